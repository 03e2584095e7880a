// Package meteo is a client for the Open-Meteo forecast API, the source of
// precipitation (historical and forecast) and forecast wind.
package meteo

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/hexatlas/hexatlas/internal/httpx"
)

// Daily variable names accepted by DailyForecast.
const (
	VarPrecipSum = "precipitation_sum"
	VarWindMean  = "wind_speed_10m_mean"
	VarWindMax   = "wind_speed_10m_max"
	VarWindMin   = "wind_speed_10m_min"
)

// Client queries the Open-Meteo forecast endpoint.
type Client struct {
	http    *httpx.Client
	baseURL string
	timeout time.Duration
}

// New creates an Open-Meteo client.
func New(http *httpx.Client, baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{http: http, baseURL: baseURL, timeout: timeout}
}

type response struct {
	Daily map[string][]*float64 `json:"daily"`
}

// DailyForecast returns the named daily variables for one point and target
// date (UTC). Null values are omitted from the result; callers treat a
// missing key as "no data".
func (c *Client) DailyForecast(ctx context.Context, lat, lon float64, date time.Time, vars []string) (map[string]float64, error) {
	dateStr := date.Format("2006-01-02")

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("daily", strings.Join(vars, ","))
	q.Set("start_date", dateStr)
	q.Set("end_date", dateStr)
	q.Set("timezone", "UTC")

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp response
	if err := c.http.GetJSON(ctx, c.baseURL, q, &resp); err != nil {
		return nil, eris.Wrap(err, "meteo: daily forecast lookup")
	}

	out := make(map[string]float64, len(vars))
	for _, v := range vars {
		series, ok := resp.Daily[v]
		if !ok || len(series) == 0 || series[0] == nil {
			continue
		}
		out[v] = *series[0]
	}
	return out, nil
}
