// Package engine resolves host groups to their fastest addresses and
// writes the result into the hosts file.
package engine

import (
	"context"
	"time"

	"github.com/jaxxstorm/quicken/internal/analyze"
	"github.com/jaxxstorm/quicken/internal/hostsfile"
	"github.com/jaxxstorm/quicken/internal/model"
	"github.com/jaxxstorm/quicken/internal/retry"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type CandidateResolver interface {
	ResolveCandidates(ctx context.Context, hostname string) ([]string, error)
}

type AddressSelector interface {
	SelectBest(ctx context.Context, hostname string, candidates []string) (string, error)
}

type HostsPatcher interface {
	Apply(ctx context.Context, groups []model.ResolvedGroup) (hostsfile.Result, error)
}

type Config struct {
	Groups   []model.HostGroup
	Resolver CandidateResolver
	Selector AddressSelector
	Patcher  HostsPatcher

	// Retries bounds the extra lookups per hostname. Zero means the default
	// of 3, a negative value disables retrying.
	Retries    int
	RetryDelay time.Duration
	// Concurrency caps the hostnames resolved at once. Zero is unbounded.
	Concurrency int
	Logger      *zap.Logger
}

type Engine struct {
	config Config
}

func New(cfg Config) *Engine {
	if cfg.Retries == 0 {
		cfg.Retries = 3
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Engine{config: cfg}
}

type unit struct {
	group    int
	slot     int
	hostname string
}

type outcome struct {
	ip  string
	err error
}

// ResolveAll resolves every hostname of every group concurrently. The
// result holds one group per input group in input order, and hosts keep
// their input order. Hostnames that cannot be resolved are left out and
// reported as failures.
func (e *Engine) ResolveAll(ctx context.Context, groups []model.HostGroup) ([]model.ResolvedGroup, []model.HostFailure) {
	units := []unit{}
	slots := make([][]outcome, len(groups))
	for gi, group := range groups {
		slots[gi] = make([]outcome, len(group.Hostnames))
		for hi, hostname := range group.Hostnames {
			units = append(units, unit{group: gi, slot: hi, hostname: hostname})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if e.config.Concurrency > 0 {
		g.SetLimit(e.config.Concurrency)
	}
	for _, u := range units {
		g.Go(func() error {
			ip, err := e.resolveHost(gctx, u.hostname)
			slots[u.group][u.slot] = outcome{ip: ip, err: err}
			return nil
		})
	}
	_ = g.Wait()

	resolved := make([]model.ResolvedGroup, 0, len(groups))
	failures := []model.HostFailure{}
	for gi, group := range groups {
		out := model.ResolvedGroup{Name: group.Name, Hosts: []model.ResolvedHost{}}
		for hi, hostname := range group.Hostnames {
			result := slots[gi][hi]
			if result.err != nil {
				e.config.Logger.Warn("hostname skipped",
					zap.String("group", group.Name),
					zap.String("hostname", hostname),
					zap.Error(result.err),
				)
				failures = append(failures, model.HostFailure{Group: group.Name, GroupIndex: gi, Hostname: hostname, Reason: result.err.Error()})
				continue
			}
			out.Hosts = append(out.Hosts, model.ResolvedHost{Hostname: hostname, IP: result.ip})
		}
		resolved = append(resolved, out)
	}
	return resolved, failures
}

func (e *Engine) resolveHost(ctx context.Context, hostname string) (string, error) {
	policy := retry.Policy{
		Retries: e.config.Retries,
		Delay:   e.config.RetryDelay,
		Logger:  e.config.Logger.With(zap.String("hostname", hostname)),
	}
	candidates, err := retry.Do(ctx, policy, func(ctx context.Context) ([]string, error) {
		return e.config.Resolver.ResolveCandidates(ctx, hostname)
	})
	if err != nil {
		return "", err
	}
	ip, err := e.config.Selector.SelectBest(ctx, hostname, candidates)
	if err != nil {
		return "", err
	}
	e.config.Logger.Debug("hostname resolved", zap.String("hostname", hostname), zap.String("ip", ip))
	return ip, nil
}

// Resolve runs the lookup stage only and reports what would be written.
func (e *Engine) Resolve(ctx context.Context) model.RunReport {
	resolved, failures := e.ResolveAll(ctx, e.config.Groups)
	report := newReport(resolved, failures)
	report.Diagnosis = analyze.Diagnose(report)
	return report
}

// Run resolves the configured groups and patches the hosts file. Patch
// failures are returned; per-hostname failures only show up in the report.
func (e *Engine) Run(ctx context.Context) (model.RunReport, error) {
	if e.config.Patcher == nil {
		return model.RunReport{}, errors.New("engine has no hosts patcher")
	}
	resolved, failures := e.ResolveAll(ctx, e.config.Groups)
	report := newReport(resolved, failures)

	result, err := e.config.Patcher.Apply(ctx, resolved)
	if err != nil {
		return report, errors.WithMessage(err, "update hosts")
	}
	report.Applied = true
	report.Changed = result.Changed
	if result.FlushErr != nil {
		report.FlushError = result.FlushErr.Error()
	}
	report.Diagnosis = analyze.Diagnose(report)

	e.config.Logger.Info("update finished",
		zap.Int("resolved", report.Resolved),
		zap.Int("skipped", report.Skipped),
		zap.Bool("changed", report.Changed),
	)
	return report, nil
}

// RunUpdate reports true when the hosts file was changed or already current.
func (e *Engine) RunUpdate(ctx context.Context) (bool, error) {
	report, err := e.Run(ctx)
	if err != nil {
		return false, err
	}
	return report.Applied, nil
}

func newReport(resolved []model.ResolvedGroup, failures []model.HostFailure) model.RunReport {
	report := model.RunReport{Groups: resolved, Failures: failures, Skipped: len(failures)}
	for _, group := range resolved {
		report.Resolved += len(group.Hosts)
	}
	return report
}
