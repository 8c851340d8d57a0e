// Package faults classifies the failures a capture pipeline cycle can hit.
//
// Every error that crosses a component boundary is wrapped in *Error with a
// Kind so the orchestrator can decide between retrying silently, degrading,
// failing the cycle, or halting the worker without string matching.
package faults
