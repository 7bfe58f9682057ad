// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode builds, issues and classifies requests to the external
// geocoding service.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/jcodagnone/geoform/metrics"
	"github.com/jcodagnone/geoform/utils/httputils"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// DefaultEndpoint is the public proxy in front of the geocoding API.
const DefaultEndpoint = "https://vercel-weather-api-server.vercel.app/api/geocode"

const (
	maxBodySize  = 4 << 20
	maxErrorBody = 512
)

// Options configures a Client. The zero value is usable.
type Options struct {
	// Endpoint is the geocoding URL; query parameters are appended to it.
	Endpoint string

	// UserAgent is the User-Agent header to use in HTTP requests
	UserAgent string

	// Timeout bounds each upstream call. Zero means 30 seconds.
	Timeout time.Duration

	// RateLimit caps outbound requests per second. Zero disables it.
	RateLimit float64

	// Burst is the limiter bucket size. Defaults to 1 when RateLimit is set.
	Burst int

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool

	// Transport overrides the base transport, mostly for tests.
	Transport http.RoundTripper
}

// Client talks to the geocoding service.
type Client struct {
	endpoint *url.URL
	client   *http.Client
	group    singleflight.Group
}

// NewClient creates a client from options.
func NewClient(options *Options) (*Client, error) {
	if options == nil {
		options = &Options{}
	}

	endpoint := options.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint %q: %w", endpoint, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("endpoint %q: unsupported scheme %q", endpoint, u.Scheme)
	}

	timeout := options.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	base := options.Transport
	if base == nil {
		base = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   4,
			IdleConnTimeout:       30 * time.Second,
			ResponseHeaderTimeout: timeout,
		}
	}

	var httpLogWriter io.Writer
	if options.EnableHTTPTrace || options.EnableHTTPBodyTrace {
		httpLogWriter = os.Stderr
	}

	var limiter *rate.Limiter
	if options.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(options.RateLimit), max(options.Burst, 1))
	}

	userAgent := "geoform/unknown"
	if options.UserAgent != "" {
		userAgent = options.UserAgent
	}

	transport := httputils.Chain(base,
		func(next http.RoundTripper) http.RoundTripper {
			return &httputils.LoggingRoundTripper{
				Transport: next,
				Writer:    httpLogWriter,
				DumpBody:  options.EnableHTTPBodyTrace,
			}
		},
		func(next http.RoundTripper) http.RoundTripper {
			return &httputils.RateLimitRoundTripper{Transport: next, Limiter: limiter}
		},
		func(next http.RoundTripper) http.RoundTripper {
			return &httputils.AppendRequestHeadersRoundTripper{
				Transport: next,
				Headers: map[string]string{
					"User-Agent": userAgent,
					"Accept":     "application/json",
				},
			}
		},
	)

	return &Client{
		endpoint: u,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}, nil
}

// URL returns the request URL for q.
func (c *Client) URL(q Query) string {
	u := *c.endpoint

	params := u.Query()
	for k, v := range q.Params() {
		params[k] = v
	}

	u.RawQuery = params.Encode()

	return u.String()
}

// Lookup validates q and fetches the matches. An empty slice is a valid
// answer. Identical concurrent lookups share one upstream call.
func (c *Client) Lookup(ctx context.Context, q Query) ([]Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	reqURL := c.URL(q)

	// the shared call outlives any single caller; the client timeout bounds it
	ch := c.group.DoChan(reqURL, func() (any, error) {
		return c.fetch(context.WithoutCancel(ctx), reqURL)
	})

	var res singleflight.Result

	select {
	case <-ctx.Done():
		return nil, &GeocodingError{Type: ErrorTypeTransport, Message: "geocoding request abandoned", Err: ctx.Err()}
	case res = <-ch:
	}

	if res.Shared {
		metrics.GeocoderShared.Inc()
	}

	if res.Err != nil {
		return nil, res.Err
	}

	results, _ := res.Val.([]Result)

	// shared callers must not alias each other's slice
	return slices.Clone(results), nil
}

// Search runs the lookup and classifies it. It never returns an error: any
// failure is folded into the outcome.
func (c *Client) Search(ctx context.Context, q Query) Outcome {
	results, err := c.Lookup(ctx, q)
	if err != nil {
		return Failure(err)
	}

	return Success(results)
}

func (c *Client) fetch(ctx context.Context, reqURL string) ([]Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeTransport, Message: "building request", Err: err}
	}

	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.GeocoderDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())

		return nil, &GeocodingError{Type: ErrorTypeTransport, Message: "geocoding request failed", Err: err}
	}

	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	metrics.GeocoderDuration.WithLabelValues(strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return nil, ClassifyHTTPError(resp.StatusCode, string(body))
	}

	var results []Result
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&results); err != nil {
		return nil, &GeocodingError{Type: ErrorTypeTransport, Message: "decoding response", Err: err}
	}

	return results, nil
}
