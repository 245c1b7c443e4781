// Package main provides the entry point for the flixsearch CLI.
//
// flixsearch searches a set of h5ai file servers at once and groups the
// downloadable media it finds by category.
//
// Usage:
//
//	flixsearch search <query>
//	flixsearch serve --listen :5000
//	flixsearch servers --check
//
// See --help for all available options.
package main

// main is the entry point for flixsearch.
func main() {
	Execute()
}
