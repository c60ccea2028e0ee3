// Package ors resolves addresses through the OpenRouteService geocoding API.
package ors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"manifest/internal/core/ports"
	"manifest/internal/pkg/errs"
)

// DefaultBaseURL is the public OpenRouteService endpoint.
const DefaultBaseURL = "https://api.openrouteservice.org"

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

type searchResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Label string `json:"label"`
		} `json:"properties"`
	} `json:"features"`
}

// Option configures a Geocoder.
type Option func(*Geocoder)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Geocoder) { g.client = c }
}

// WithCountry restricts results to an ISO 3166-1 alpha-2 country.
func WithCountry(country string) Option {
	return func(g *Geocoder) { g.country = country }
}

// Geocoder implements ports.Geocoder.
type Geocoder struct {
	client  *http.Client
	baseURL string
	apiKey  string
	country string
}

// NewGeocoder creates a geocoder. An empty baseURL selects DefaultBaseURL.
func NewGeocoder(baseURL, apiKey string, opts ...Option) *Geocoder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	g := &Geocoder{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Geocode returns the best match for address, or ports.ErrNotFound. It makes exactly
// one upstream request. Transport failures, 429 and 5xx come back as retryable
// errs.ExternalServiceError; the next operator action or batch tick is the retry.
func (g *Geocoder) Geocode(ctx context.Context, address string) (ports.GeocodeResult, error) {
	text := strings.Join(strings.Fields(address), " ")
	if text == "" {
		return ports.GeocodeResult{}, errs.NewValueIsRequiredError("address")
	}

	req, err := g.newSearchRequest(ctx, text)
	if err != nil {
		return ports.GeocodeResult{}, errs.NewExternalServiceError("geocoder", err)
	}
	resp, err := g.do(req)
	if err != nil {
		return ports.GeocodeResult{}, wrap(err)
	}
	defer resp.Body.Close()

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.GeocodeResult{}, errs.NewExternalServiceError("geocoder", fmt.Errorf("decode response: %w", err))
	}
	if len(decoded.Features) == 0 {
		return ports.GeocodeResult{}, ports.ErrNotFound
	}

	f := decoded.Features[0]
	if len(f.Geometry.Coordinates) != 2 {
		return ports.GeocodeResult{}, errs.NewExternalServiceError("geocoder",
			fmt.Errorf("invalid coordinate format for %q", text))
	}

	return ports.GeocodeResult{
		Lng:               f.Geometry.Coordinates[0],
		Lat:               f.Geometry.Coordinates[1],
		NormalizedAddress: f.Properties.Label,
	}, nil
}

func (g *Geocoder) newSearchRequest(ctx context.Context, text string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/geocode/search", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", g.apiKey)
	req.Header.Set("Accept", "application/json")

	q := req.URL.Query()
	q.Set("text", text)
	q.Set("size", "1")
	if g.country != "" {
		q.Set("boundary.country", g.country)
	}
	req.URL.RawQuery = q.Encode()
	return req, nil
}

func (g *Geocoder) do(req *http.Request) (*http.Response, error) {
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return resp, nil
}

func isRetryable(err error) bool {
	var he *httpStatusError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func wrap(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if isRetryable(err) {
		return errs.NewRetryableExternalServiceError("geocoder", err)
	}
	return errs.NewExternalServiceError("geocoder", err)
}
