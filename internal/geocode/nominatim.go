package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"iftarspot/backend/internal/geo"

	"golang.org/x/time/rate"
)

const defaultUserAgent = "IftarSpotGeocoder/1.0"

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// Client reverse-geocodes coordinates against a Nominatim /reverse endpoint.
// Requests are limited to one per second, the public instance's policy.
type Client struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

// Place is the human-readable location of a coordinate.
type Place struct {
	DisplayName string `json:"displayName"`
	Area        string `json:"area,omitempty"`
	City        string `json:"city,omitempty"`
}

type nominatimReverse struct {
	DisplayName string            `json:"display_name"`
	Error       string            `json:"error"`
	Address     map[string]string `json:"address"`
}

// NewClient returns nil when no endpoint is configured.
func NewClient(cfg Config) *Client {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Limit(1), 1),
	}
}

// Reverse looks up the place at c.
func (c *Client) Reverse(ctx context.Context, pos geo.Coordinate) (Place, error) {
	if c == nil {
		return Place{}, fmt.Errorf("geocoder is not configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return Place{}, err
	}

	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(pos.Lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(pos.Lng, 'f', -1, 64))
	values.Set("format", "jsonv2")
	values.Set("zoom", "16")
	values.Set("addressdetails", "1")
	values.Set("accept-language", "bn,en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+values.Encode(), nil)
	if err != nil {
		return Place{}, err
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Place{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Place{}, fmt.Errorf("geocoder status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload nominatimReverse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return Place{}, err
	}
	if payload.Error != "" {
		return Place{}, fmt.Errorf("geocoder: %s", payload.Error)
	}
	return Place{
		DisplayName: strings.TrimSpace(payload.DisplayName),
		Area:        firstNonEmpty(payload.Address, "suburb", "neighbourhood", "quarter", "city_district"),
		City:        firstNonEmpty(payload.Address, "city", "town", "village", "state_district"),
	}, nil
}

func firstNonEmpty(address map[string]string, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(address[key]); v != "" {
			return v
		}
	}
	return ""
}
