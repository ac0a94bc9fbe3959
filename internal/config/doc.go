// Package config provides configuration loading, merging, and validation
// facilities for the server.
//
// Configuration is assembled from multiple sources. For each field the first
// source that sets a non-zero value wins:
//  1. Environment variables
//  2. Command-line flags
//  3. JSON or YAML config file
//  4. Built-in defaults
//
// A boolean set to true by an earlier source cannot be switched off by a
// later one.
//
// The main entry point is [GetStructuredConfig].
package config
