package locate

import (
	"context"
	"errors"
	"time"

	"iftarspot/backend/internal/geo"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ErrUnavailable = errors.New("geolocation is not available")
	ErrDenied      = errors.New("geolocation permission denied")
	ErrTimeout     = errors.New("geolocation timed out")
	ErrFailed      = errors.New("geolocation request failed")
)

const DefaultTimeout = 10 * time.Second

// Options configures one position request.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	// MaximumAge is how old a reused fix may be; zero forces a fresh lookup.
	MaximumAge time.Duration
}

// DefaultOptions asks for a fresh high-accuracy fix within ten seconds.
var DefaultOptions = Options{HighAccuracy: true, Timeout: DefaultTimeout, MaximumAge: 0}

// Locator is a platform geolocation capability.
type Locator interface {
	CurrentPosition(ctx context.Context, opts Options) (geo.Coordinate, error)
}

// Kind separates a missing capability from a request that was attempted.
type Kind string

const (
	KindNone        Kind = ""
	KindUnavailable Kind = "unavailable"
	KindFailed      Kind = "failed"
)

// Message is the user-facing text for k.
func (k Kind) Message() string {
	switch k {
	case KindUnavailable:
		return "আপনার ডিভাইসে লোকেশন সুবিধা নেই। (Location is not supported.)"
	case KindFailed:
		return "লোকেশন পাওয়া যায়নি। অনুমতি দিন বা পরে আবার চেষ্টা করুন। (Could not get your location.)"
	default:
		return ""
	}
}

// Classify maps an error returned by Locate to its Kind.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrUnavailable):
		return KindUnavailable
	default:
		return KindFailed
	}
}

var outcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "iftarspot_locate_requests_total",
	Help: "Locate requests by outcome",
}, []string{"outcome"})

// Locate requests one position from locator, bounded by opts.Timeout.
// Failures wrap ErrUnavailable, ErrDenied, ErrTimeout or ErrFailed.
func Locate(ctx context.Context, locator Locator, opts Options) (geo.Coordinate, error) {
	pos, err := locate(ctx, locator, opts)
	if err != nil {
		outcomes.WithLabelValues(string(Classify(err))).Inc()
		return geo.Coordinate{}, err
	}
	outcomes.WithLabelValues("success").Inc()
	return pos, nil
}

func locate(ctx context.Context, locator Locator, opts Options) (geo.Coordinate, error) {
	if locator == nil {
		return geo.Coordinate{}, ErrUnavailable
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	type answer struct {
		pos geo.Coordinate
		err error
	}
	ch := make(chan answer, 1)
	go func() {
		pos, err := locator.CurrentPosition(ctx, opts)
		ch <- answer{pos: pos, err: err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return geo.Coordinate{}, ErrTimeout
		}
		return geo.Coordinate{}, errors.Join(ErrFailed, ctx.Err())
	case a := <-ch:
		if a.err == nil {
			return a.pos, nil
		}
		switch {
		case errors.Is(a.err, ErrUnavailable), errors.Is(a.err, ErrDenied),
			errors.Is(a.err, ErrTimeout), errors.Is(a.err, ErrFailed):
			return geo.Coordinate{}, a.err
		case errors.Is(a.err, context.DeadlineExceeded):
			return geo.Coordinate{}, ErrTimeout
		default:
			return geo.Coordinate{}, errors.Join(ErrFailed, a.err)
		}
	}
}

// Result is the outcome of an asynchronous request.
type Result struct {
	Position geo.Coordinate
	Err      error
}

// Request runs Locate in the background and delivers exactly one Result.
func Request(ctx context.Context, locator Locator, opts Options) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		pos, err := Locate(ctx, locator, opts)
		out <- Result{Position: pos, Err: err}
	}()
	return out
}
