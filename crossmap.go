// Package crossmap reconciles two tabular datasets, a master and a target,
// by cascading multi-key matching: exact equality on normalized values,
// phonetic codes, edit-distance similarity, and an optional external
// semantic fallback. Each master row resolves to at most one target row;
// leftover target rows are reported alongside the joined output.
//
// Example usage:
//
//	client, err := crossmap.New(crossmap.WithWorkers(4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client.OnRowUnmatched(func(row match.ResultRow) {
//	    log.Printf("no match for %s", row.MasterID)
//	})
//
//	cfg := match.DefaultConfig()
//	cfg.KeyPairs = []match.KeyPair{{Master: "name", Target: "company_name"}}
//
//	result, err := client.JoinFiles(ctx, cfg, "master.csv", "target.xlsx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("matched %d of %d rows\n", result.Stats.Matched, result.Stats.MasterRows)
package crossmap

import (
	"context"

	"github.com/agentstation/crossmap/internal/ingest"
	"github.com/agentstation/crossmap/pkg/match"
	"github.com/agentstation/crossmap/pkg/tabular"
)

// Client is the high-level entry point. It carries runtime options and
// event hooks; join semantics travel in the per-call config.
type Client struct {
	opts  *options
	hooks *hooks
}

// New creates a client with the given options.
func New(opts ...Option) (*Client, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Client{opts: o, hooks: newHooks()}, nil
}

// Join runs one join described by cfg over two in-memory datasets.
func (c *Client) Join(ctx context.Context, cfg *match.Config, master, target *tabular.Dataset) (*match.Result, error) {
	matcher, err := match.New(cfg, c.matchOptions()...)
	if err != nil {
		return nil, err
	}
	return matcher.Join(ctx, master, target)
}

// JoinFiles ingests the master and target files, then joins them. The file
// format is chosen by extension; CSV and XLSX are supported.
func (c *Client) JoinFiles(ctx context.Context, cfg *match.Config, masterPath, targetPath string) (*match.Result, error) {
	master, err := ingest.File(masterPath)
	if err != nil {
		return nil, err
	}
	target, err := ingest.File(targetPath)
	if err != nil {
		return nil, err
	}
	return c.Join(ctx, cfg, master, target)
}

func (c *Client) matchOptions() []match.Option {
	opts := []match.Option{
		match.WithWorkers(c.opts.workers),
		match.WithProgress(c.opts.progressEvery, c.hooks.triggerProgress),
		match.WithOnRowMatched(c.hooks.triggerRowMatched),
		match.WithOnRowUnmatched(c.hooks.triggerRowUnmatched),
	}
	if c.opts.semantic != nil {
		opts = append(opts, match.WithSemantic(c.opts.semantic))
	}
	return opts
}
