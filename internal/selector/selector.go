package selector

import (
	"context"
	"sync"
	"time"

	"github.com/jaxxstorm/quicken/internal/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrNoReachableCandidate = errors.New("no reachable candidate")

// Prober measures the connection latency of one address.
type Prober interface {
	Probe(ctx context.Context, address string, port int, attempts int, timeout time.Duration) model.ProbeSummary
}

type Config struct {
	Port     int
	Attempts int
	Timeout  time.Duration
	Logger   *zap.Logger
}

type Selector struct {
	prober Prober
	config Config
}

func New(prober Prober, cfg Config) *Selector {
	if cfg.Port == 0 {
		cfg.Port = 80
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 10
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Selector{prober: prober, config: cfg}
}

// SelectBest probes every candidate concurrently and returns the one with
// the lowest average latency. Ties keep the earliest candidate.
func (s *Selector) SelectBest(ctx context.Context, hostname string, candidates []string) (string, error) {
	switch len(candidates) {
	case 0:
		return "", errors.Wrapf(ErrNoReachableCandidate, "%s: empty candidate list", hostname)
	case 1:
		return candidates[0], nil
	}

	summaries := s.probeAll(ctx, candidates)

	best := -1
	for i, summary := range summaries {
		if !summary.Reachable() {
			s.config.Logger.Debug("candidate unreachable", zap.String("hostname", hostname), zap.String("address", summary.Address))
			continue
		}
		if best == -1 || summary.Avg < summaries[best].Avg {
			best = i
		}
	}
	if best == -1 {
		return "", errors.Wrapf(ErrNoReachableCandidate, "%s: %d candidates probed", hostname, len(candidates))
	}

	winner := summaries[best]
	s.config.Logger.Info("selected address",
		zap.String("hostname", hostname),
		zap.String("address", winner.Address),
		zap.Float64("avg_ms", winner.Avg),
		zap.Int("candidates", len(candidates)),
	)
	return winner.Address, nil
}

func (s *Selector) probeAll(ctx context.Context, candidates []string) []model.ProbeSummary {
	summaries := make([]model.ProbeSummary, len(candidates))
	wg := sync.WaitGroup{}
	for i, candidate := range candidates {
		wg.Add(1)
		go func(idx int, address string) {
			defer wg.Done()
			summaries[idx] = s.prober.Probe(ctx, address, s.config.Port, s.config.Attempts, s.config.Timeout)
		}(i, candidate)
	}
	wg.Wait()
	return summaries
}
