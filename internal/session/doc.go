// Package session owns one capture run: the single-instance lock, the
// startup checks against the capture source and parameter store, and the
// worker goroutine that drives the pipeline until it is stopped.
package session
