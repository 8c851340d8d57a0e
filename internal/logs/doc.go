// Package logs reads the JSON-lines event archives written by a capture run
// so the CLI can show and follow session history after the fact.
package logs
