package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/flixsearch/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newBackend starts an h5ai-like server answering every POST with body.
func newBackend(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testServer(name, baseURL string, categories ...string) model.Server {
	return model.Server{
		Name:       name,
		URL:        baseURL + "/" + name + "/",
		Categories: categories,
	}
}

// TestClientSearch tests parsing and normalization of search results.
func TestClientSearch(t *testing.T) {
	t.Parallel()

	t.Run("sends h5ai request and builds items", func(t *testing.T) {
		t.Parallel()

		requests := make(chan model.SearchRequest, 1)
		headers := make(chan http.Header, 1)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req model.SearchRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			requests <- req
			headers <- r.Header.Clone()

			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"search":[
				{"href":"/X/Movies/Big%20Buck%20Bunny.MP4"},
				{"href":"/Series/pilot.mkv"},
				{"href":"/X/readme.txt"},
				{"href":"/X/noext"},
				{"size":12},
				{"href":42},
				{"href":"/X/album/song.mp3"}
			]}`)
		}))
		t.Cleanup(srv.Close)

		server := testServer("X", srv.URL, "Movies", "Series")
		server.Headers = map[string]string{"X-Api-Key": "k"}
		client := NewClient(WithLogger(discardLogger()), WithUserAgent("test-agent"))

		items, err := client.Search(context.Background(), server, "bunny")
		require.NoError(t, err)

		req := <-requests
		assert.Equal(t, "get", req.Action)
		assert.Equal(t, "/X/", req.Search.Href)
		assert.Equal(t, "bunny", req.Search.Pattern)
		assert.True(t, req.Search.IgnoreCase)

		h := <-headers
		assert.Equal(t, "application/json", h.Get("Content-Type"))
		assert.Equal(t, "test-agent", h.Get("User-Agent"))
		assert.Equal(t, "k", h.Get("X-Api-Key"))

		require.Len(t, items, 3)

		assert.Equal(t, "Big Buck Bunny.MP4", items[0].Name)
		assert.Equal(t, srv.URL+"/X/Movies/Big%20Buck%20Bunny.MP4", items[0].URL)
		assert.Equal(t, ".mp4", items[0].Extension)
		assert.Equal(t, "fa fa-file-video-o", items[0].Icon)
		assert.Equal(t, "X", items[0].Server)
		assert.Equal(t, []string{"Movies", "Series"}, items[0].Categories)

		assert.Equal(t, srv.URL+"/X/Series/pilot.mkv", items[1].URL)
		assert.Equal(t, ".mp3", items[2].Extension)
		assert.Equal(t, "fa fa-music", items[2].Icon)
	})

	t.Run("each item owns its categories", func(t *testing.T) {
		t.Parallel()

		srv := newBackend(t, http.StatusOK, `{"search":[{"href":"/X/a.mp4"},{"href":"/X/b.mp4"}]}`)
		server := testServer("X", srv.URL, "Movies")
		client := NewClient(WithLogger(discardLogger()))

		items, err := client.Search(context.Background(), server, "a")
		require.NoError(t, err)
		require.Len(t, items, 2)

		items[0].Categories[0] = "Changed"
		assert.Equal(t, "Movies", items[1].Categories[0])
		assert.Equal(t, "Movies", server.Categories[0])
	})

	t.Run("empty search array", func(t *testing.T) {
		t.Parallel()

		srv := newBackend(t, http.StatusOK, `{"search":[]}`)
		client := NewClient(WithLogger(discardLogger()))

		items, err := client.Search(context.Background(), testServer("X", srv.URL, "Movies"), "nothing")
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	errorTests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"server error", http.StatusInternalServerError, `{"search":[]}`, ErrUnexpectedStatus},
		{"not found", http.StatusNotFound, ``, ErrUnexpectedStatus},
		{"invalid json", http.StatusOK, `<html>oops</html>`, ErrMalformedResponse},
		{"missing search key", http.StatusOK, `{"items":[]}`, ErrMissingSearchKey},
		{"search is not an array", http.StatusOK, `{"search":"x"}`, ErrMissingSearchKey},
		{"top level array", http.StatusOK, `[{"href":"/X/a.mp4"}]`, ErrMissingSearchKey},
	}

	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := newBackend(t, tt.status, tt.body)
			client := NewClient(WithLogger(discardLogger()))

			items, err := client.Search(context.Background(), testServer("X", srv.URL, "Movies"), "q")
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, items)
		})
	}

	t.Run("response too large", func(t *testing.T) {
		t.Parallel()

		body := `{"search":[` + strings.Repeat(`{"href":"/X/a.mp4"},`, 100) + `{"href":"/X/b.mp4"}]}`
		srv := newBackend(t, http.StatusOK, body)
		client := NewClient(WithLogger(discardLogger()), WithMaxBodySize(64))

		_, err := client.Search(context.Background(), testServer("X", srv.URL, "Movies"), "q")
		require.ErrorIs(t, err, ErrResponseTooLarge)
	})
}

// TestClientQuery tests failure containment.
func TestClientQuery(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		srv := newBackend(t, http.StatusOK, `{"search":[{"href":"/A/x.mp4"},{"href":"/A/y.txt"}]}`)
		client := NewClient(WithLogger(discardLogger()))

		outcome := client.Query(context.Background(), testServer("A", srv.URL, "Movies"), "x")
		assert.False(t, outcome.Failed())
		assert.Equal(t, "A", outcome.Server)
		require.Len(t, outcome.Items, 1)
		assert.Equal(t, "x.mp4", outcome.Items[0].Name)
	})

	t.Run("timeout yields empty outcome", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		t.Cleanup(srv.Close)
		t.Cleanup(func() { close(release) })

		client := NewClient(
			WithLogger(discardLogger()),
			WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}),
		)

		outcome := client.Query(context.Background(), testServer("B", srv.URL, "Movies"), "x")
		assert.True(t, outcome.Failed())
		assert.NotNil(t, outcome.Items)
		assert.Empty(t, outcome.Items)
	})

	t.Run("connection refused", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		baseURL := srv.URL
		srv.Close()

		client := NewClient(WithLogger(discardLogger()))
		outcome := client.Query(context.Background(), testServer("C", baseURL, "Movies"), "x")
		assert.True(t, outcome.Failed())
		assert.Empty(t, outcome.Items)
	})

	t.Run("recovers from panics", func(t *testing.T) {
		t.Parallel()

		client := NewClient(
			WithLogger(discardLogger()),
			WithHTTPClient(&http.Client{Transport: panicTransport{}}),
		)

		var outcome model.Outcome
		require.NotPanics(t, func() {
			outcome = client.Query(context.Background(), testServer("D", "http://127.0.0.1:1", "Movies"), "x")
		})
		require.ErrorIs(t, outcome.Err, ErrPanic)
		assert.Empty(t, outcome.Items)
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		srv := newBackend(t, http.StatusOK, `{"search":[{"href":"/E/x.mp4"}]}`)
		client := NewClient(WithLogger(discardLogger()))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		outcome := client.Query(ctx, testServer("E", srv.URL, "Movies"), "x")
		assert.ErrorIs(t, outcome.Err, context.Canceled)
	})
}

type panicTransport struct{}

func (panicTransport) RoundTrip(*http.Request) (*http.Response, error) {
	panic("boom")
}

// TestNewClient tests option handling.
func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		c := NewClient()
		assert.Equal(t, DefaultMaxBodySize, c.maxBodySize)
		assert.Equal(t, rate.Inf, c.limiter.Limit())
		assert.NotNil(t, c.logger)
		assert.NotNil(t, c.client)
	})

	t.Run("rate limit", func(t *testing.T) {
		t.Parallel()

		c := NewClient(WithRateLimit(2))
		assert.Equal(t, rate.Limit(2), c.limiter.Limit())

		c = NewClient(WithRateLimit(0))
		assert.Equal(t, rate.Inf, c.limiter.Limit())
	})

	t.Run("ignores invalid values", func(t *testing.T) {
		t.Parallel()

		c := NewClient(WithMaxBodySize(-1), WithHTTPClient(nil))
		assert.Equal(t, DefaultMaxBodySize, c.maxBodySize)
		assert.NotNil(t, c.client)
	})
}

// TestParseSearchResponse tests href handling without a network round trip.
func TestParseSearchResponse(t *testing.T) {
	t.Parallel()

	server := model.Server{Name: "X", URL: "http://h/X/", Categories: []string{"Movies"}}

	tests := []struct {
		name string
		body string
		want []string
	}{
		{"full mount path", `{"search":[{"href":"/X/a.mp4"}]}`, []string{"http://h/X/a.mp4"}},
		{"relative to mount", `{"search":[{"href":"/a.mp4"}]}`, []string{"http://h/X/a.mp4"}},
		{"uppercase extension", `{"search":[{"href":"/X/A.ISO"}]}`, []string{"http://h/X/A.ISO"}},
		{"disallowed dropped", `{"search":[{"href":"/X/a.pdf"},{"href":"/X/b.zip"}]}`, []string{"http://h/X/b.zip"}},
		{"null href skipped", `{"search":[{"href":null},{"href":"/X/c.avi"}]}`, []string{"http://h/X/c.avi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			items, err := parseSearchResponse(server, []byte(tt.body))
			require.NoError(t, err)

			got := make([]string, 0, len(items))
			for _, item := range items {
				got = append(got, item.URL)
			}
			assert.Equal(t, tt.want, got, fmt.Sprintf("body %s", tt.body))
		})
	}
}
