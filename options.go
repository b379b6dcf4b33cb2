package crossmap

import (
	"github.com/agentstation/crossmap/pkg/errors"
	"github.com/agentstation/crossmap/pkg/semantic"
)

type options struct {
	workers       int
	progressEvery int
	semantic      semantic.Matcher
}

func defaultOptions() *options {
	return &options{
		workers:       1,
		progressEvery: 1000,
	}
}

func newOptions(opts ...Option) (*options, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Option configures a Client.
type Option func(*options) error

// WithWorkers sets how many goroutines evaluate master rows concurrently.
func WithWorkers(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return &errors.ConfigError{Component: "workers", Message: "worker count must be at least 1"}
		}
		o.workers = n
		return nil
	}
}

// WithProgressInterval sets how often progress hooks fire, in master rows.
func WithProgressInterval(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return &errors.ConfigError{Component: "progress", Message: "progress interval must be at least 1"}
		}
		o.progressEvery = n
		return nil
	}
}

// WithSemantic installs an external semantic matcher for rows the cascade
// leaves unmatched.
func WithSemantic(m semantic.Matcher) Option {
	return func(o *options) error {
		o.semantic = m
		return nil
	}
}

// WithGemini installs the Gemini-backed semantic matcher. An empty model
// selects the default model; an empty API key yields a matcher that never
// suggests.
func WithGemini(apiKey, model string) Option {
	return func(o *options) error {
		o.semantic = semantic.NewGemini(apiKey, model)
		return nil
	}
}
