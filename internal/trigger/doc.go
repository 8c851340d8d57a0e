// Package trigger decides when a capture cycle should run.
//
// Every strategy implements Trigger: Next blocks until the next cycle is due
// and returns ctx.Err() once the context is cancelled. Window automation
// (clicking the cast button, reading focus or key state) is delegated to
// bridge commands so the strategies stay platform neutral.
package trigger
