// Package registry holds the fixed, ordered list of backend servers.
//
// A Registry is built once at startup from configuration (or from the
// built-in DHAKA-FLIX list) and injected into the aggregator. It cannot be
// modified afterwards; every accessor returns copies.
package registry
