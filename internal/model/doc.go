// Package model defines the core data structures used throughout flixsearch.
//
// This package contains the following main types:
//   - Server: One backend content server from the registry
//   - SearchRequest: The h5ai search payload sent to a backend
//   - ResultItem: A normalized, downloadable file found by a backend
//   - GroupedResults: The merged result set keyed by category
//   - Outcome: What a single backend query produced, including failures
//
// The models live in their own package so that the backend client, the
// aggregator, the report writers and the web layer can share them without
// import cycles. All of them serialize to JSON.
package model
