// Package main hosts the scribe CLI entrypoint and command graph.
//
// The Cobra command tree runs the capture session in the foreground, parses
// saved captures offline, inspects the ledger, and maintains the parameter
// store. Configuration resolution and logger construction live here so the
// internal packages stay free of process wiring.
package main
