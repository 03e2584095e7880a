// Package elevation is a client for the Open-Elevation batch lookup API.
package elevation

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/hexatlas/hexatlas/internal/httpx"
)

// Point is one lookup coordinate.
type Point struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Provider resolves elevations for an ordered list of points. The result is
// in the same order as the request. A failing batch is a hard error for the
// whole batch; there is no partial-batch degradation.
type Provider interface {
	Lookup(ctx context.Context, points []Point) ([]float64, error)
}

// Client queries the Open-Elevation lookup endpoint.
type Client struct {
	http    *httpx.Client
	baseURL string
	timeout time.Duration
}

// New creates an Open-Elevation client.
func New(http *httpx.Client, baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{http: http, baseURL: baseURL, timeout: timeout}
}

type request struct {
	Locations []Point `json:"locations"`
}

type response struct {
	Results []struct {
		Elevation float64 `json:"elevation"`
	} `json:"results"`
}

// Lookup posts one batch of points and returns elevations in request order.
func (c *Client) Lookup(ctx context.Context, points []Point) ([]float64, error) {
	if len(points) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp response
	if err := c.http.PostJSON(ctx, c.baseURL, request{Locations: points}, &resp); err != nil {
		return nil, eris.Wrap(err, "elevation: batch lookup")
	}
	if len(resp.Results) != len(points) {
		return nil, eris.Errorf("elevation: got %d results for %d points", len(resp.Results), len(points))
	}

	out := make([]float64, len(resp.Results))
	for i, r := range resp.Results {
		out[i] = r.Elevation
	}
	return out, nil
}
