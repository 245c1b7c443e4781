// Package config provides the runtime configuration of flixsearch.
//
// Values are resolved in this order, later sources winning:
//  1. built-in defaults (NewConfig)
//  2. the YAML configuration file (.flixsearch.yaml)
//  3. environment variables, optionally loaded from a .env file
//  4. command line flags
package config
