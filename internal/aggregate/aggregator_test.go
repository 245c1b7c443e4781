package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/flixsearch/internal/backend"
	"github.com/nao1215/flixsearch/internal/model"
	"github.com/nao1215/flixsearch/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustRegistry(t *testing.T, entries ...registry.Entry) *registry.Registry {
	t.Helper()

	reg, err := registry.New(entries)
	require.NoError(t, err)
	return reg
}

func entry(name, categories string) registry.Entry {
	return registry.Entry{
		Name:       name,
		URL:        "http://" + name + ".test/" + name + "/",
		Categories: registry.SplitCategories(categories),
	}
}

func item(server, name string, categories ...string) *model.ResultItem {
	return &model.ResultItem{
		Name:       name,
		URL:        "http://" + server + ".test/" + server + "/" + name,
		Extension:  ".mp4",
		Icon:       "fa fa-file-video-o",
		Server:     server,
		Categories: categories,
	}
}

// fakeQuerier answers from a fixed table and records what it was asked.
type fakeQuerier struct {
	mu       sync.Mutex
	results  map[string][]*model.ResultItem
	failures map[string]error
	delays   map[string]time.Duration
	patterns []string

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeQuerier) Query(ctx context.Context, server model.Server, pattern string) model.Outcome {
	current := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.maxInFlight.Load()
		if current <= peak || f.maxInFlight.CompareAndSwap(peak, current) {
			break
		}
	}

	f.mu.Lock()
	f.patterns = append(f.patterns, pattern)
	f.mu.Unlock()

	if d := f.delays[server.Name]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return model.Outcome{Server: server.Name, Items: []*model.ResultItem{}, Err: ctx.Err()}
		}
	}
	if err := f.failures[server.Name]; err != nil {
		return model.Outcome{Server: server.Name, Items: []*model.ResultItem{}, Err: err}
	}
	return model.Outcome{Server: server.Name, Items: f.results[server.Name]}
}

// panicQuerier fails the test if any server is contacted.
type panicQuerier struct{}

func (panicQuerier) Query(context.Context, model.Server, string) model.Outcome {
	panic("server must not be contacted")
}

// TestAggregateRejectsEmptyQuery tests input validation.
func TestAggregateRejectsEmptyQuery(t *testing.T) {
	t.Parallel()

	agg := New(mustRegistry(t, entry("A", "Movies")), panicQuerier{}, WithLogger(discardLogger()))

	for _, query := range []string{"", " ", "\t\n "} {
		t.Run("query "+query, func(t *testing.T) {
			t.Parallel()

			got, err := agg.Aggregate(context.Background(), query)
			require.ErrorIs(t, err, ErrEmptyQuery)
			assert.Nil(t, got)

			var qerr *QueryError
			require.ErrorAs(t, err, &qerr)
			assert.Equal(t, query, qerr.Query)
		})
	}
}

// TestAggregate tests fan-out and merging.
func TestAggregate(t *testing.T) {
	t.Parallel()

	t.Run("merges in registry order", func(t *testing.T) {
		t.Parallel()

		q := &fakeQuerier{
			results: map[string][]*model.ResultItem{
				"A": {item("A", "a1.mp4", "Movies"), item("A", "a2.mp4", "Movies")},
				"B": {item("B", "b1.mp4", "Series")},
				"C": {item("C", "c1.mp4", "Movies")},
			},
			// A answers last; the merge order must not depend on it.
			delays: map[string]time.Duration{"A": 30 * time.Millisecond},
		}
		reg := mustRegistry(t, entry("A", "Movies"), entry("B", "Series"), entry("C", "Movies"))
		agg := New(reg, q, WithLogger(discardLogger()))

		got, err := agg.Aggregate(context.Background(), "x")
		require.NoError(t, err)

		assert.Equal(t, []string{"Movies", "Series"}, got.Categories())
		movies, ok := got.Get("Movies")
		require.True(t, ok)
		names := make([]string, 0, len(movies))
		for _, it := range movies {
			names = append(names, it.Name)
		}
		assert.Equal(t, []string{"a1.mp4", "a2.mp4", "c1.mp4"}, names)
	})

	t.Run("trims the pattern", func(t *testing.T) {
		t.Parallel()

		q := &fakeQuerier{}
		agg := New(mustRegistry(t, entry("A", "Movies")), q, WithLogger(discardLogger()))

		_, err := agg.Aggregate(context.Background(), "  batman  ")
		require.NoError(t, err)
		assert.Equal(t, []string{"batman"}, q.patterns)
	})

	t.Run("failed servers contribute nothing", func(t *testing.T) {
		t.Parallel()

		q := &fakeQuerier{
			results:  map[string][]*model.ResultItem{"A": {item("A", "x.mp4", "Movies")}},
			failures: map[string]error{"B": errors.New("connection refused")},
		}
		reg := mustRegistry(t, entry("A", "Movies"), entry("B", "Series"))
		agg := New(reg, q, WithLogger(discardLogger()))

		got, err := agg.Aggregate(context.Background(), "x")
		require.NoError(t, err)
		assert.Equal(t, []string{"Movies"}, got.Categories())
		assert.Equal(t, 1, got.Total())
	})

	t.Run("all servers failing is an empty success", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		q := &fakeQuerier{failures: map[string]error{"A": boom, "B": boom}}
		reg := mustRegistry(t, entry("A", "Movies"), entry("B", "Series"))
		agg := New(reg, q, WithLogger(discardLogger()))

		got, err := agg.Aggregate(context.Background(), "x")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.IsEmpty())
	})

	t.Run("item with several categories is shared", func(t *testing.T) {
		t.Parallel()

		shared := item("A", "x.mp4", "Movies", "Series")
		q := &fakeQuerier{results: map[string][]*model.ResultItem{"A": {shared}}}
		agg := New(mustRegistry(t, entry("A", "Movies, Series")), q, WithLogger(discardLogger()))

		got, err := agg.Aggregate(context.Background(), "x")
		require.NoError(t, err)

		movies, _ := got.Get("Movies")
		series, _ := got.Get("Series")
		require.Len(t, movies, 1)
		require.Len(t, series, 1)
		assert.Same(t, movies[0], series[0])
	})

	t.Run("no deduplication across servers", func(t *testing.T) {
		t.Parallel()

		q := &fakeQuerier{results: map[string][]*model.ResultItem{
			"A": {item("A", "same.mp4", "Movies")},
			"B": {item("B", "same.mp4", "Movies")},
		}}
		reg := mustRegistry(t, entry("A", "Movies"), entry("B", "Movies"))
		agg := New(reg, q, WithLogger(discardLogger()))

		got, err := agg.Aggregate(context.Background(), "same")
		require.NoError(t, err)
		movies, _ := got.Get("Movies")
		assert.Len(t, movies, 2)
	})

	t.Run("respects the concurrency limit", func(t *testing.T) {
		t.Parallel()

		delays := map[string]time.Duration{}
		entries := make([]registry.Entry, 0, 6)
		for _, name := range []string{"S1", "S2", "S3", "S4", "S5", "S6"} {
			delays[name] = 20 * time.Millisecond
			entries = append(entries, entry(name, "Movies"))
		}
		q := &fakeQuerier{delays: delays}
		agg := New(mustRegistry(t, entries...), q, WithConcurrency(2), WithLogger(discardLogger()))

		_, err := agg.Aggregate(context.Background(), "x")
		require.NoError(t, err)
		assert.LessOrEqual(t, q.maxInFlight.Load(), int32(2))
		assert.Len(t, q.patterns, 6)
	})

	t.Run("deadline bounds slow servers", func(t *testing.T) {
		t.Parallel()

		q := &fakeQuerier{
			results: map[string][]*model.ResultItem{"A": {item("A", "x.mp4", "Movies")}},
			delays:  map[string]time.Duration{"B": time.Minute},
		}
		reg := mustRegistry(t, entry("A", "Movies"), entry("B", "Series"))
		agg := New(reg, q, WithDeadline(50*time.Millisecond), WithLogger(discardLogger()))

		start := time.Now()
		got, err := agg.Aggregate(context.Background(), "x")
		require.NoError(t, err)
		assert.Less(t, time.Since(start), 5*time.Second)
		assert.Equal(t, 1, got.Total())
	})
}

// TestNew tests option handling.
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("default concurrency is registry size", func(t *testing.T) {
		t.Parallel()

		agg := New(mustRegistry(t, entry("A", "Movies"), entry("B", "Movies")), &fakeQuerier{})
		assert.Equal(t, 2, agg.concurrency)
		assert.Equal(t, DefaultDeadline, agg.deadline)
		assert.NotNil(t, agg.logger)
	})

	t.Run("default concurrency is capped", func(t *testing.T) {
		t.Parallel()

		entries := make([]registry.Entry, 0, 20)
		for i := range 20 {
			entries = append(entries, entry("S"+string(rune('a'+i)), "Movies"))
		}
		agg := New(mustRegistry(t, entries...), &fakeQuerier{})
		assert.Equal(t, maxDefaultConcurrency, agg.concurrency)
	})

	t.Run("ignores non-positive options", func(t *testing.T) {
		t.Parallel()

		agg := New(mustRegistry(t, entry("A", "Movies")), &fakeQuerier{}, WithConcurrency(0), WithDeadline(-time.Second))
		assert.Equal(t, 1, agg.concurrency)
		assert.Equal(t, DefaultDeadline, agg.deadline)
	})
}

// TestGroup tests category grouping.
func TestGroup(t *testing.T) {
	t.Parallel()

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		got := Group(nil)
		assert.True(t, got.IsEmpty())
		assert.Equal(t, 0, got.Total())
	})

	t.Run("first seen category order", func(t *testing.T) {
		t.Parallel()

		items := []*model.ResultItem{
			item("A", "1.mp4", "Series"),
			item("A", "2.mp4", "Movies", "Series"),
			item("B", "3.mp4", "Anime"),
		}
		got := Group(items)

		assert.Equal(t, []string{"Series", "Movies", "Anime"}, got.Categories())
		series, _ := got.Get("Series")
		require.Len(t, series, 2)
		assert.Equal(t, "1.mp4", series[0].Name)
		assert.Equal(t, "2.mp4", series[1].Name)
		assert.Equal(t, 4, got.Total())
	})

	t.Run("item without categories is not grouped", func(t *testing.T) {
		t.Parallel()

		got := Group([]*model.ResultItem{item("A", "1.mp4")})
		assert.True(t, got.IsEmpty())
	})
}

// TestAggregateEndToEnd runs the aggregator against real HTTP backends.
func TestAggregateEndToEnd(t *testing.T) {
	t.Parallel()

	serverA := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"search":[{"href":"/A/x.mp4"},{"href":"/A/y.txt"}]}`)
	}))
	t.Cleanup(serverA.Close)

	release := make(chan struct{})
	serverB := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(serverB.Close)
	t.Cleanup(func() { close(release) })

	serverC := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"search":[{"href":"/C/Tools/x%20&%20y.iso"},{"href":"/C/x2.zip"}]}`)
	}))
	t.Cleanup(serverC.Close)

	reg := mustRegistry(t,
		registry.Entry{Name: "A", URL: serverA.URL + "/A/", Categories: registry.CategoryList{"Movies", "Series"}},
		registry.Entry{Name: "B", URL: serverB.URL + "/B/", Categories: registry.CategoryList{"Anime"}},
		registry.Entry{Name: "C", URL: serverC.URL + "/C/", Categories: registry.CategoryList{"Software", "Movies"}},
	)
	client := backend.NewClient(
		backend.WithHTTPClient(&http.Client{Timeout: 100 * time.Millisecond}),
		backend.WithLogger(discardLogger()),
	)
	agg := New(reg, client, WithLogger(discardLogger()))

	t.Run("partial results", func(t *testing.T) {
		got, err := agg.Aggregate(context.Background(), "x")
		require.NoError(t, err)

		assert.Equal(t, []string{"Movies", "Series", "Software"}, got.Categories())
		movies, _ := got.Get("Movies")
		require.Len(t, movies, 3)
		assert.Equal(t, "x.mp4", movies[0].Name)
		assert.Equal(t, serverA.URL+"/A/x.mp4", movies[0].URL)
		assert.Equal(t, "A", movies[0].Server)
		assert.Equal(t, "x & y.iso", movies[1].Name)
		assert.Equal(t, "C", movies[1].Server)
		assert.Equal(t, "x2.zip", movies[2].Name)

		software, _ := got.Get("Software")
		require.Len(t, software, 2)
		assert.Same(t, movies[1], software[0])

		_, ok := got.Get("Anime")
		assert.False(t, ok)
	})

	t.Run("idempotent", func(t *testing.T) {
		first, err := agg.Aggregate(context.Background(), "x")
		require.NoError(t, err)
		second, err := agg.Aggregate(context.Background(), "x")
		require.NoError(t, err)

		a, err := json.Marshal(first)
		require.NoError(t, err)
		b, err := json.Marshal(second)
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b))

		s := string(a)
		movies := strings.Index(s, `"Movies":`)
		series := strings.Index(s, `"Series":`)
		software := strings.Index(s, `"Software":`)
		require.True(t, movies >= 0 && series >= 0 && software >= 0)
		assert.Less(t, movies, series)
		assert.Less(t, series, software)
	})
}

type fakeProber struct{}

func (fakeProber) Probe(_ context.Context, server model.Server) model.ServerStatus {
	return model.ServerStatus{
		Server:     server.Name,
		URL:        server.URL,
		Reachable:  server.Name != "down",
		StatusCode: http.StatusOK,
		H5AI:       true,
	}
}

// TestAggregatorProbe tests probing in registry order.
func TestAggregatorProbe(t *testing.T) {
	t.Parallel()

	reg := mustRegistry(t, entry("up", "Movies"), entry("down", "Series"))
	agg := New(reg, &fakeQuerier{}, WithLogger(discardLogger()))

	statuses := agg.Probe(context.Background(), fakeProber{})
	require.Len(t, statuses, 2)
	assert.Equal(t, "up", statuses[0].Server)
	assert.True(t, statuses[0].Healthy())
	assert.Equal(t, "down", statuses[1].Server)
	assert.False(t, statuses[1].Healthy())
}
