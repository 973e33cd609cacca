package probe

import (
	"context"
	"math"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/jaxxstorm/quicken/internal/model"
	"github.com/montanaflynn/stats"
	"go.uber.org/zap"
)

// Dialer opens the connection timed by a probe attempt. *net.Dialer
// satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

type Options struct {
	Network string
	Dialer  Dialer
	Logger  *zap.Logger
}

type Prober struct {
	opts Options
}

func New(opts Options) *Prober {
	if opts.Network == "" {
		opts.Network = "tcp"
	}
	if opts.Dialer == nil {
		opts.Dialer = &net.Dialer{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Prober{opts: opts}
}

// Probe issues attempts concurrent connection attempts to address:port,
// each bounded by timeout, and summarizes the finite samples.
func (p *Prober) Probe(ctx context.Context, address string, port int, attempts int, timeout time.Duration) model.ProbeSummary {
	if attempts < 1 {
		attempts = 1
	}
	target := net.JoinHostPort(address, strconv.Itoa(port))

	samples := make([]model.ProbeSample, attempts)
	wg := sync.WaitGroup{}
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(seq int) {
			defer wg.Done()
			samples[seq] = model.ProbeSample{Seq: seq, ElapsedMillis: p.attempt(ctx, target, timeout)}
		}(i)
	}
	wg.Wait()

	summary := Summarize(address, samples)
	p.opts.Logger.Debug("probe finished",
		zap.String("target", target),
		zap.Int("attempts", attempts),
		zap.Int("successes", summary.Successes()),
		zap.Float64("avg_ms", summary.Avg),
	)
	return summary
}

// Reachable is a single-attempt probe.
func (p *Prober) Reachable(ctx context.Context, address string, port int, timeout time.Duration) bool {
	return p.Probe(ctx, address, port, 1, timeout).Reachable()
}

func (p *Prober) attempt(ctx context.Context, target string, timeout time.Duration) float64 {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	conn, err := p.opts.Dialer.DialContext(ctx, p.opts.Network, target)
	elapsed := time.Since(start)
	if err != nil {
		p.opts.Logger.Debug("probe attempt failed", zap.String("target", target), zap.Error(err))
		return math.Inf(1)
	}
	_ = conn.Close()
	if ctx.Err() != nil {
		return math.Inf(1)
	}
	return float64(elapsed) / float64(time.Millisecond)
}

// Summarize builds a ProbeSummary, ignoring infinite samples for avg, min
// and max.
func Summarize(address string, samples []model.ProbeSample) model.ProbeSummary {
	summary := model.ProbeSummary{
		Address:  address,
		Attempts: len(samples),
		Samples:  samples,
		Avg:      math.NaN(),
		Min:      math.NaN(),
		Max:      math.NaN(),
	}

	finite := stats.Float64Data{}
	for _, s := range samples {
		if !s.Failed() && !math.IsNaN(s.ElapsedMillis) {
			finite = append(finite, s.ElapsedMillis)
		}
	}
	if len(finite) == 0 {
		return summary
	}

	// stats only errors on empty input, which is excluded above.
	summary.Avg, _ = stats.Mean(finite)
	summary.Min, _ = stats.Min(finite)
	summary.Max, _ = stats.Max(finite)
	return summary
}
