package pipeline

import (
	"context"

	"scribe/internal/ledger"
	"scribe/internal/reading"
)

// Host is everything the orchestrator needs from its surroundings. Paths
// and fields are read at the start of each cycle so edits apply to the next
// capture.
type Host interface {
	Log(line string)
	ConfiguredFields() []string
	LedgerPath() string
	StorePath() string
}

// Resolver looks up parameter values for a hexagram name.
type Resolver interface {
	Resolve(ctx context.Context, name, fallback string) ([]string, error)
}

// Appender persists records.
type Appender interface {
	Append(ctx context.Context, rec *reading.Record, params []string) (ledger.Result, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, name, fallback string) ([]string, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, name, fallback string) ([]string, error) {
	return f(ctx, name, fallback)
}

// NoParams resolves every name to no values. Sessions install it when the
// parameter store failed its startup check.
var NoParams Resolver = ResolverFunc(func(context.Context, string, string) ([]string, error) {
	return nil, nil
})
