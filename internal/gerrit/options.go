package gerrit

import (
	"time"

	"github.com/cenkalti/backoff"
)

type Options struct {
	Timeout    time.Duration
	NewBackoff func() backoff.BackOff
}

type Option func(*Options) error

// Timeout sets the per-request HTTP timeout. The default is 30 seconds.
func Timeout(timeout time.Duration) Option {
	return func(o *Options) error {
		o.Timeout = timeout
		return nil
	}
}

// Backoff sets the retry policy factory. Each request gets a fresh policy.
func Backoff(factory func() backoff.BackOff) Option {
	return func(o *Options) error {
		o.NewBackoff = factory
		return nil
	}
}

// NoRetry disables retries entirely. Used in tests and by callers that
// enforce their own retry policy.
func NoRetry() Option {
	return Backoff(func() backoff.BackOff {
		return &backoff.StopBackOff{}
	})
}

func NewOptions(opts ...Option) (*Options, error) {
	o := &Options{
		Timeout:    30 * time.Second,
		NewBackoff: defaultBackoff,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}
