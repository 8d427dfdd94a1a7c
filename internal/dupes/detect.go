package dupes

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/asynkron/tpo/internal/catalog"
)

// Result is the outcome of scanning one language.
type Result struct {
	Language string
	File     string
	Groups   []Group
	Stats    Stats
}

// HasDuplicates reports whether any duplicate group was found.
func (r Result) HasDuplicates() bool {
	return len(r.Groups) > 0
}

// Detect scans a single catalog.
func Detect(c *catalog.Catalog, opts Options) (Result, error) {
	groups, stats, err := FindGroups(c.Path, c.Entries, opts)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Language: c.Language,
		File:     c.Path,
		Groups:   groups,
		Stats:    stats,
	}, nil
}

// DetectAll scans every catalog, one language per worker. Languages share no
// state, so they run in parallel; results keep the input order.
func DetectAll(ctx context.Context, catalogs []*catalog.Catalog, opts Options) ([]Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	results := make([]Result, len(catalogs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, c := range catalogs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := Detect(c, opts)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// TotalGroups counts duplicate groups across results.
func TotalGroups(results []Result) int {
	total := 0
	for _, r := range results {
		total += len(r.Groups)
	}
	return total
}
