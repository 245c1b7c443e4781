// Package backend talks to a single h5ai content server.
//
// Client.Search POSTs the h5ai search request for a query and turns the
// returned hrefs into model.ResultItems, keeping only files whose extension
// is on the filetype allow-list. Client.Query wraps Search for the fan-out:
// it never returns an error and never panics, a failed server simply yields
// an Outcome without items. Client.Probe checks whether a server is up and
// serving an h5ai index.
//
// A Client is safe for concurrent use. All requests made through the same
// Client share one optional rate limiter.
package backend
