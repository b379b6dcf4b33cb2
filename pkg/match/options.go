package match

import (
	"github.com/agentstation/crossmap/pkg/errors"
	"github.com/agentstation/crossmap/pkg/semantic"
)

// options holds the runtime knobs of a Matcher, as opposed to the join
// semantics carried by Config.
type options struct {
	workers       int
	semantic      semantic.Matcher
	progressEvery int
	onProgress    func(processed, total int)
	onMatched     func(row ResultRow)
	onUnmatched   func(row ResultRow)
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

// Option configures a Matcher.
type Option func(*options) error

// WithWorkers sets how many goroutines evaluate cascades concurrently.
// Results are identical for any worker count; the default of 1 keeps the
// reference single-threaded behavior.
func WithWorkers(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return &errors.ConfigError{Component: "workers", Message: "worker count must be at least 1"}
		}
		o.workers = n
		return nil
	}
}

// WithSemantic installs the external collaborator consulted for rows the
// cascade leaves unmatched. It is only used when the semantic algorithm is
// enabled and exactly one key pair is configured.
func WithSemantic(m semantic.Matcher) Option {
	return func(o *options) error {
		o.semantic = m
		return nil
	}
}

// WithProgress reports progress every n processed master rows and once at
// completion.
func WithProgress(n int, fn func(processed, total int)) Option {
	return func(o *options) error {
		if n < 1 {
			return &errors.ConfigError{Component: "progress", Message: "progress interval must be at least 1"}
		}
		o.progressEvery = n
		o.onProgress = fn
		return nil
	}
}

// WithOnRowMatched registers a callback fired for each matched result row,
// in master order.
func WithOnRowMatched(fn func(row ResultRow)) Option {
	return func(o *options) error {
		o.onMatched = fn
		return nil
	}
}

// WithOnRowUnmatched registers a callback fired for each unmatched result
// row, in master order.
func WithOnRowUnmatched(fn func(row ResultRow)) Option {
	return func(o *options) error {
		o.onUnmatched = fn
		return nil
	}
}
