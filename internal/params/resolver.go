package params

import (
	"context"
	"strings"

	"scribe/internal/faults"
)

// Resolver performs one-shot lookups against the store at Path.
type Resolver struct {
	Path string
}

// Resolve returns the values for name, retrying with fallback when the exact
// name has no rows and fallback is not blank. Store failures come back as
// faults.StoreUnavailable; callers are expected to carry on with no values.
func (r Resolver) Resolve(ctx context.Context, name, fallback string) ([]string, error) {
	if strings.TrimSpace(r.Path) == "" {
		return nil, nil
	}
	store, err := Open(r.Path, true)
	if err != nil {
		return nil, faults.New(faults.StoreUnavailable, "open parameter store", err)
	}
	defer store.Close()

	values, err := store.Lookup(ctx, name)
	if err != nil {
		return nil, faults.New(faults.StoreUnavailable, "lookup "+Normalize(name), err)
	}
	if len(values) == 0 && strings.TrimSpace(fallback) != "" {
		values, err = store.Lookup(ctx, fallback)
		if err != nil {
			return nil, faults.New(faults.StoreUnavailable, "lookup "+Normalize(fallback), err)
		}
	}
	return values, nil
}
