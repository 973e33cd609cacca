package lookup

import (
	"context"
	"net/netip"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ErrNoCandidatesFound means the lookup produced no usable address. The
// source may be rate limiting or briefly unavailable, so callers retry it.
var ErrNoCandidatesFound = errors.New("no candidates found")

// Source returns raw candidate address strings for a hostname.
type Source interface {
	Lookup(ctx context.Context, hostname string) ([]string, error)
}

type Resolver struct {
	source Source
	logger *zap.Logger
}

func NewResolver(source Source, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{source: source, logger: logger}
}

// ResolveCandidates returns the distinct IP addresses the source knows for
// hostname. Strings that do not parse as an address are dropped.
func (r *Resolver) ResolveCandidates(ctx context.Context, hostname string) ([]string, error) {
	raw, err := r.source.Lookup(ctx, hostname)
	if err != nil {
		return nil, errors.Wrapf(err, "lookup %s", hostname)
	}

	candidates := lo.Uniq(lo.FilterMap(raw, func(s string, _ int) (string, bool) {
		addr, err := netip.ParseAddr(strings.TrimSpace(s))
		if err != nil {
			return "", false
		}
		return addr.String(), true
	}))
	if len(candidates) == 0 {
		return nil, errors.Wrap(ErrNoCandidatesFound, hostname)
	}

	r.logger.Debug("candidates resolved", zap.String("hostname", hostname), zap.Strings("candidates", candidates))
	return candidates, nil
}
