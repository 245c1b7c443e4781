// Package web serves the search UI and a small JSON API on top of the
// aggregator.
//
// Routes:
//
//	GET /                 search form
//	GET /search?query=    rendered results, 400 for a blank query
//	GET /api/search?query= grouped results as JSON with an ETag
//	GET /api/servers      probe of every registered server
//	GET /healthz          liveness
package web
