package locate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"iftarspot/backend/internal/geo"

	"golang.org/x/time/rate"
)

const defaultEndpoint = "http://ip-api.com/json/"
const defaultUserAgent = "IftarSpotLocator/1.0"

// maxFixes caps the per-address cache.
const maxFixes = 1024

type ipKey struct{}

// WithClientIP attaches the address to look up to ctx.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipKey{}, ip)
}

// ClientIPFromContext returns the address set by WithClientIP.
func ClientIPFromContext(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(ipKey{}).(string)
	return ip, ok && ip != ""
}

// IPConfig configures IPLocator.
type IPConfig struct {
	Endpoint string
	Timeout  time.Duration
	RPS      float64
	Burst    int
}

// IPLocator resolves the caller's approximate position from its IP address
// using an ip-api compatible endpoint.
type IPLocator struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	now      func() time.Time

	mu     sync.Mutex
	fixes  map[string]fix
	maxAge time.Duration
}

type fix struct {
	pos geo.Coordinate
	at  time.Time
}

type ipAPIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// NewIPLocator creates an IP locator.
func NewIPLocator(cfg IPConfig) *IPLocator {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = 0.75
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 2
	}
	return &IPLocator{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		now:      time.Now,
		fixes:    make(map[string]fix),
	}
}

// CurrentPosition looks up the IP stored in ctx. A cached fix is reused only
// when it is younger than opts.MaximumAge.
func (l *IPLocator) CurrentPosition(ctx context.Context, opts Options) (geo.Coordinate, error) {
	if l == nil {
		return geo.Coordinate{}, ErrUnavailable
	}
	ip, ok := ClientIPFromContext(ctx)
	if !ok {
		return geo.Coordinate{}, fmt.Errorf("%w: no client address", ErrUnavailable)
	}
	ip = hostOnly(ip)
	if parsed := net.ParseIP(ip); parsed == nil {
		return geo.Coordinate{}, fmt.Errorf("%w: invalid client address", ErrUnavailable)
	} else if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() {
		return geo.Coordinate{}, fmt.Errorf("%w: non-routable client address", ErrUnavailable)
	}

	if opts.MaximumAge > 0 {
		l.mu.Lock()
		cached, ok := l.fixes[ip]
		l.mu.Unlock()
		if ok && l.now().Sub(cached.at) <= opts.MaximumAge {
			return cached.pos, nil
		}
	}

	if err := l.limiter.Wait(ctx); err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: %v", ErrFailed, err)
	}
	pos, err := l.lookup(ctx, ip)
	if err != nil {
		return geo.Coordinate{}, err
	}

	if opts.MaximumAge > 0 {
		l.remember(ip, pos, opts.MaximumAge)
	}
	return pos, nil
}

// remember stores a fix for reuse. Entries older than the largest MaximumAge
// requested so far can never be served again and are dropped; past maxFixes
// the oldest entries go.
func (l *IPLocator) remember(ip string, pos geo.Coordinate, maxAge time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if maxAge > l.maxAge {
		l.maxAge = maxAge
	}
	l.fixes[ip] = fix{pos: pos, at: now}
	if len(l.fixes) <= maxFixes {
		return
	}
	for key, f := range l.fixes {
		if now.Sub(f.at) > l.maxAge {
			delete(l.fixes, key)
		}
	}
	for len(l.fixes) > maxFixes {
		oldest := ""
		var oldestAt time.Time
		for key, f := range l.fixes {
			if oldest == "" || f.at.Before(oldestAt) {
				oldest, oldestAt = key, f.at
			}
		}
		delete(l.fixes, oldest)
	}
}

func (l *IPLocator) lookup(ctx context.Context, ip string) (geo.Coordinate, error) {
	values := url.Values{}
	values.Set("fields", "status,message,lat,lon")
	reqURL := l.endpoint + url.PathEscape(ip) + "?" + values.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: %v", ErrFailed, err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return geo.Coordinate{}, ErrTimeout
		}
		return geo.Coordinate{}, fmt.Errorf("%w: %v", ErrFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return geo.Coordinate{}, fmt.Errorf("%w: status %d: %s", ErrFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload ipAPIResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&payload); err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: %v", ErrFailed, err)
	}
	if !strings.EqualFold(payload.Status, "success") {
		msg := strings.ToLower(payload.Message)
		if strings.Contains(msg, "private range") || strings.Contains(msg, "reserved range") {
			return geo.Coordinate{}, fmt.Errorf("%w: %s", ErrUnavailable, payload.Message)
		}
		return geo.Coordinate{}, fmt.Errorf("%w: %s", ErrFailed, payload.Message)
	}
	return geo.Coordinate{Lat: payload.Lat, Lng: payload.Lon}, nil
}

func hostOnly(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return strings.TrimSpace(addr)
}
