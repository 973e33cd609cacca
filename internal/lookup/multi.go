package lookup

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
)

// MultiSource merges the candidates of several sources, queried
// concurrently. It fails only when every source fails.
type MultiSource []Source

func (m MultiSource) Lookup(ctx context.Context, hostname string) ([]string, error) {
	if len(m) == 0 {
		return nil, errors.New("no lookup sources configured")
	}
	results := make([][]string, len(m))
	errs := make([]error, len(m))
	wg := sync.WaitGroup{}
	for i, source := range m {
		wg.Add(1)
		go func(idx int, source Source) {
			defer wg.Done()
			results[idx], errs[idx] = source.Lookup(ctx, hostname)
		}(i, source)
	}
	wg.Wait()

	merged := []string{}
	ok := false
	for i := range m {
		if errs[i] != nil {
			continue
		}
		ok = true
		merged = append(merged, results[i]...)
	}
	if !ok {
		return nil, multierr.Combine(errs...)
	}
	return lo.Uniq(merged), nil
}
