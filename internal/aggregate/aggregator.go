package aggregate

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/flixsearch/internal/model"
	"github.com/nao1215/flixsearch/internal/registry"
	"golang.org/x/sync/errgroup"
)

const (
	// maxDefaultConcurrency caps the default number of parallel queries.
	maxDefaultConcurrency = 16

	// DefaultDeadline bounds a whole aggregation when no deadline is given.
	DefaultDeadline = 35 * time.Second
)

// Querier queries a single server. Query must not return before it is done
// with the server and must contain its own failures in the Outcome.
// *backend.Client implements Querier.
type Querier interface {
	Query(ctx context.Context, server model.Server, pattern string) model.Outcome
}

// Prober checks the health of a single server.
// *backend.Client implements Prober.
type Prober interface {
	Probe(ctx context.Context, server model.Server) model.ServerStatus
}

// Aggregator runs a query against every server of a registry.
type Aggregator struct {
	registry *registry.Registry
	querier  Querier

	// concurrency is the maximum number of servers queried at once.
	concurrency int

	// deadline bounds one Aggregate call.
	deadline time.Duration

	logger *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithConcurrency sets the maximum number of concurrent server queries.
// Non-positive values keep the default, which is the registry size capped at 16.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithDeadline sets the overall deadline of one Aggregate call.
func WithDeadline(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.deadline = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// New creates an Aggregator over the servers of reg.
func New(reg *registry.Registry, querier Querier, opts ...Option) *Aggregator {
	a := &Aggregator{
		registry:    reg,
		querier:     querier,
		concurrency: min(reg.Len(), maxDefaultConcurrency),
		deadline:    DefaultDeadline,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.concurrency < 1 {
		a.concurrency = 1
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}

	return a
}

// Registry returns the registry the aggregator searches.
func (a *Aggregator) Registry() *registry.Registry {
	return a.registry
}

// Aggregate queries every server for pattern and groups the results.
//
// An empty or blank pattern is rejected with ErrEmptyQuery before any server
// is contacted. Otherwise Aggregate waits for every server to answer, time
// out or fail, and always returns a non-nil result. Failed servers contribute
// nothing; when every server fails the result is empty.
func (a *Aggregator) Aggregate(ctx context.Context, pattern string) (*model.GroupedResults, error) {
	raw := pattern
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, &QueryError{Query: raw, Err: ErrEmptyQuery}
	}

	searchID := uuid.NewString()
	logger := a.logger.With("search_id", searchID)

	servers := a.registry.Servers()
	logger.Info("starting search",
		"query", pattern,
		"servers", len(servers),
		"concurrency", a.concurrency,
	)
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, a.deadline)
	defer cancel()

	outcomes := a.fanOut(ctx, servers, pattern)

	items := make([]*model.ResultItem, 0)
	failed := 0
	for _, outcome := range outcomes {
		if outcome.Failed() {
			failed++
			continue
		}
		items = append(items, outcome.Items...)
	}

	grouped := Group(items)

	if failed == len(servers) {
		logger.Warn("all servers failed",
			"query", pattern,
			"failed", failed,
			"elapsed", time.Since(start),
		)
		return grouped, nil
	}

	logger.Info("search complete",
		"query", pattern,
		"items", len(items),
		"categories", grouped.Len(),
		"failed", failed,
		"elapsed", time.Since(start),
	)
	return grouped, nil
}

// fanOut runs one query per server and returns the outcomes in server order.
func (a *Aggregator) fanOut(ctx context.Context, servers []model.Server, pattern string) []model.Outcome {
	outcomes := make([]model.Outcome, len(servers))

	// Tasks never return an error, so the derived context is only canceled
	// by the caller or the deadline.
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, server := range servers {
		g.Go(func() error {
			outcomes[i] = a.querier.Query(ctx, server, pattern)
			if outcomes[i].Server == "" {
				outcomes[i].Server = server.Name
			}
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // tasks always return nil

	return outcomes
}

// Group buckets items by each of their categories. Categories keep the order
// in which they are first seen and items keep their order within a bucket.
// An item with several categories appears in every one of their buckets.
func Group(items []*model.ResultItem) *model.GroupedResults {
	grouped := model.NewGroupedResults()
	for _, item := range items {
		for _, category := range item.Categories {
			grouped.Add(category, item)
		}
	}
	return grouped
}

// Probe checks every server concurrently and returns the statuses in
// registry order.
func (a *Aggregator) Probe(ctx context.Context, prober Prober) []model.ServerStatus {
	servers := a.registry.Servers()
	statuses := make([]model.ServerStatus, len(servers))

	ctx, cancel := context.WithTimeout(ctx, a.deadline)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, server := range servers {
		g.Go(func() error {
			statuses[i] = prober.Probe(ctx, server)
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // tasks always return nil

	healthy := 0
	for _, s := range statuses {
		if s.Healthy() {
			healthy++
		}
	}
	a.logger.Info("probe complete", "servers", len(statuses), "healthy", healthy)

	return statuses
}
