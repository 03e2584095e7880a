// Package power is a client for the NASA POWER daily point API, the source
// of historical temperature and wind observations.
package power

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/hexatlas/hexatlas/internal/httpx"
)

// POWER encodes missing observations as this fill value.
const fillValue = -999.0

// Parameter names accepted by Daily.
const (
	ParamTempMean = "T2M"
	ParamTempMax  = "T2M_MAX"
	ParamTempMin  = "T2M_MIN"
	ParamWindMean = "WS10M"
	ParamWindMax  = "WS10M_MAX"
	ParamWindMin  = "WS10M_MIN"
)

// Client queries the POWER temporal daily point endpoint.
type Client struct {
	http    *httpx.Client
	baseURL string
	timeout time.Duration
}

// New creates a POWER client.
func New(http *httpx.Client, baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{http: http, baseURL: baseURL, timeout: timeout}
}

type response struct {
	Properties struct {
		Parameter map[string]map[string]*float64 `json:"parameter"`
	} `json:"properties"`
}

// Daily returns the named daily parameters for one point and date. Absent,
// null, and fill-value entries are omitted from the result; callers treat a
// missing key as "no data".
func (c *Client) Daily(ctx context.Context, lat, lon float64, date time.Time, params []string) (map[string]float64, error) {
	dateStr := date.Format("20060102")

	q := url.Values{}
	q.Set("community", "AG")
	q.Set("format", "JSON")
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("start", dateStr)
	q.Set("end", dateStr)
	q.Set("parameters", strings.Join(params, ","))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp response
	if err := c.http.GetJSON(ctx, c.baseURL, q, &resp); err != nil {
		return nil, eris.Wrap(err, "power: daily lookup")
	}
	if resp.Properties.Parameter == nil {
		return nil, eris.Errorf("power: response has no parameter block")
	}

	out := make(map[string]float64, len(params))
	for _, p := range params {
		series, ok := resp.Properties.Parameter[p]
		if !ok {
			continue
		}
		v, ok := series[dateStr]
		if !ok || v == nil || *v == fillValue {
			continue
		}
		out[p] = *v
	}
	return out, nil
}
