// Package config loads, normalizes, and validates previsbine configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// FALLOUT4_PATH and FO4EDIT_PATH. Command line flags layer on top of the
// returned Config; tool discovery for anything left blank lives in the locate
// package.
package config
