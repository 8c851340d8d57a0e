// Package pipeline runs the capture cycle: wait for a trigger, read a stable
// capture, assemble a record, resolve its parameters, and append it to the
// ledger. An Orchestrator produces at most one record per cooldown window.
package pipeline
