package web

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/flixsearch/internal/aggregate"
	"github.com/nao1215/flixsearch/internal/filetype"
	"github.com/nao1215/flixsearch/internal/model"
	"golang.org/x/crypto/sha3"
)

// errQueryRequired is the message returned for a blank query.
const errQueryRequired = "Query parameter is required"

// templateFuncs are available in the HTML templates.
var templateFuncs = template.FuncMap{
	"join": strings.Join,
}

// pageData is what index.html renders.
type pageData struct {
	Query           string
	SearchPerformed bool
	GroupedResults  []model.Group
	Total           int
	Extensions      []string
	Version         string
}

// apiSearchResponse is the body of GET /api/search.
type apiSearchResponse struct {
	Query   string                `json:"query"`
	Total   int                   `json:"total"`
	Results *model.GroupedResults `json:"results"`
}

func (s *Server) newPage() pageData {
	return pageData{
		GroupedResults: []model.Group{},
		Extensions:     filetype.AllowedExtensions(),
		Version:        s.version,
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", s.newPage())
}

func (s *Server) handleSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errQueryRequired})
		return
	}

	grouped, err := s.searcher.Aggregate(c.Request.Context(), query)
	if err != nil {
		s.writeSearchError(c, err)
		return
	}

	page := s.newPage()
	page.Query = query
	page.SearchPerformed = true
	page.GroupedResults = grouped.Groups()
	page.Total = grouped.Total()
	c.HTML(http.StatusOK, "index.html", page)
}

func (s *Server) handleAPISearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errQueryRequired})
		return
	}

	grouped, err := s.searcher.Aggregate(c.Request.Context(), query)
	if err != nil {
		s.writeSearchError(c, err)
		return
	}

	body, err := encodeJSON(apiSearchResponse{
		Query:   query,
		Total:   grouped.Total(),
		Results: grouped,
	})
	if err != nil {
		s.logger.Error("failed to encode search response", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	etag := computeETag(body)
	c.Header("ETag", etag)
	c.Header("Cache-Control", "no-cache")
	if match := c.GetHeader("If-None-Match"); match != "" && etagMatches(match, etag) {
		c.Status(http.StatusNotModified)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (s *Server) handleAPIServers(c *gin.Context) {
	if s.probe == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "server probing is disabled"})
		return
	}
	statuses := s.probe(c.Request.Context())
	if statuses == nil {
		statuses = []model.ServerStatus{}
	}
	c.JSON(http.StatusOK, statuses)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": s.version,
	})
}

// writeSearchError maps an Aggregate error to a response.
func (s *Server) writeSearchError(c *gin.Context, err error) {
	if errors.Is(err, aggregate.ErrEmptyQuery) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errQueryRequired})
		return
	}
	s.logger.Error("search failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// encodeJSON encodes v without HTML escaping so download URLs keep a
// literal "&". The trailing newline added by the encoder is dropped.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// computeETag returns a strong ETag of body.
func computeETag(body []byte) string {
	sum := sha3.Sum256(body)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

// etagMatches reports whether an If-None-Match header matches etag.
func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
