// Package config loads, normalizes, and validates scribe configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), and
// reads TOML files. Capture sources are either files written by the UI
// bridge or commands that print the panel text; commands are argv lists and
// never go through a shell.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical modes, and clear validation errors.
package config
