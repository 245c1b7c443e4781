// Package aggregate fans a query out to every registered server and merges
// the answers into one category-grouped result set.
//
// One task per server runs through an errgroup with a concurrency limit.
// Every task writes only its own slot of a pre-sized outcome slice, so the
// reduction after Wait needs no locking. Server failures are contained by
// the Querier and show up as outcomes without items; Aggregate itself only
// fails for an empty query.
package aggregate
