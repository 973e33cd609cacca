package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/jaxxstorm/quicken/internal/analyze"
	"github.com/jaxxstorm/quicken/internal/dnsclient"
	"github.com/jaxxstorm/quicken/internal/engine"
	"github.com/jaxxstorm/quicken/internal/groups"
	"github.com/jaxxstorm/quicken/internal/hostsfile"
	"github.com/jaxxstorm/quicken/internal/lookup"
	"github.com/jaxxstorm/quicken/internal/model"
	"github.com/jaxxstorm/quicken/internal/output"
	"github.com/jaxxstorm/quicken/internal/platform"
	"github.com/jaxxstorm/quicken/internal/probe"
	"github.com/jaxxstorm/quicken/internal/selector"
	"go.uber.org/zap"
)

var Version = "dev"

type CLI struct {
	Update  UpdateCmd  `cmd:"" default:"1" help:"Resolve host groups and update the hosts file (default)."`
	Resolve ResolveCmd `cmd:"" help:"Resolve host groups without touching the hosts file."`
	Restore RestoreCmd `cmd:"" help:"Restore the hosts file from its backup."`
	Version VersionCmd `cmd:"" help:"Print version."`
}

type LogFlags struct {
	Verbose bool `help:"Enable verbose logging."`
	Debug   bool `help:"Enable debug logging."`
}

type HostsFlags struct {
	HostsPath string `name:"hosts-path" help:"Hosts file to manage. Defaults to the platform hosts file."`
}

type ResolveFlags struct {
	Groups      string        `type:"path" help:"YAML file with host groups. Defaults to the built-in GitHub group."`
	Source      string        `enum:"ipaddress,dns,all" default:"ipaddress" help:"Where candidate addresses come from."`
	PageURL     string        `name:"page-url" default:"${page_url}" help:"Lookup page URL; {host} is replaced by the hostname."`
	Resolvers   []string      `name:"resolver" help:"Resolvers for --source dns (repeatable). If not set, uses system and public resolvers."`
	Port        int           `default:"80" help:"TCP port probed on each candidate."`
	Attempts    int           `default:"10" help:"Probe attempts per candidate."`
	Timeout     time.Duration `default:"5s" help:"Timeout per probe attempt."`
	Retries     int           `default:"3" help:"Lookup retries per hostname."`
	RetryDelay  time.Duration `default:"1s" help:"Delay between lookup retries."`
	Concurrency int           `default:"0" help:"Hostnames resolved at once (0 = unbounded)."`
	Deadline    time.Duration `default:"0s" help:"Overall time budget for the run (0 = none)."`
	Output      string        `enum:"pretty,json" default:"pretty" help:"Output format."`
}

type UpdateCmd struct {
	ResolveFlags    `embed:""`
	HostsFlags      `embed:""`
	LogFlags        `embed:""`
	OverwriteBackup bool `help:"Refresh an existing hosts backup instead of keeping the first one."`
}

type ResolveCmd struct {
	ResolveFlags `embed:""`
	LogFlags     `embed:""`
}

type RestoreCmd struct {
	HostsFlags `embed:""`
	LogFlags   `embed:""`
}

type VersionCmd struct{}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("quicken"),
		kong.Description("Pin the fastest reachable addresses for slow hostnames in the hosts file."),
		kong.Vars{"page_url": lookup.DefaultPageURL},
	)

	switch ctx.Command() {
	case "version":
		fmt.Println(Version)
	case "restore":
		logger := mustLogger(cli.Restore.LogFlags)
		os.Exit(runRestore(cli.Restore, logger))
	case "resolve":
		logger := mustLogger(cli.Resolve.LogFlags)
		os.Exit(runResolve(cli.Resolve, logger))
	default:
		logger := mustLogger(cli.Update.LogFlags)
		os.Exit(runUpdate(cli.Update, logger))
	}
}

func runUpdate(cmd UpdateCmd, logger *zap.Logger) int {
	defer logger.Sync() //nolint:errcheck

	patcher, err := newPatcher(cmd.HostsFlags, cmd.OverwriteBackup, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	e, err := newEngine(cmd.ResolveFlags, patcher, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel := runContext(cmd.Deadline)
	defer cancel()
	report, err := e.Run(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return render(report, cmd.Output)
}

func runResolve(cmd ResolveCmd, logger *zap.Logger) int {
	defer logger.Sync() //nolint:errcheck

	e, err := newEngine(cmd.ResolveFlags, nil, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel := runContext(cmd.Deadline)
	defer cancel()
	return render(e.Resolve(ctx), cmd.Output)
}

func runRestore(cmd RestoreCmd, logger *zap.Logger) int {
	defer logger.Sync() //nolint:errcheck

	patcher, err := newPatcher(cmd.HostsFlags, false, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel := runContext(0)
	defer cancel()
	result, err := patcher.Restore(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("hosts restored from backup")
	if result.FlushErr != nil {
		fmt.Fprintln(os.Stderr, result.FlushErr)
		return 2
	}
	return 0
}

func newEngine(flags ResolveFlags, patcher *hostsfile.Patcher, logger *zap.Logger) (*engine.Engine, error) {
	hostGroups, err := groups.Load(flags.Groups)
	if err != nil {
		return nil, err
	}
	source, err := newSource(flags, logger)
	if err != nil {
		return nil, err
	}

	retries := flags.Retries
	if retries == 0 {
		retries = -1
	}
	cfg := engine.Config{
		Groups:   hostGroups,
		Resolver: lookup.NewResolver(source, logger),
		Selector: selector.New(probe.New(probe.Options{Logger: logger}), selector.Config{
			Port:     flags.Port,
			Attempts: flags.Attempts,
			Timeout:  flags.Timeout,
			Logger:   logger,
		}),
		Retries:     retries,
		RetryDelay:  flags.RetryDelay,
		Concurrency: flags.Concurrency,
		Logger:      logger,
	}
	if patcher != nil {
		cfg.Patcher = patcher
	}
	return engine.New(cfg), nil
}

func newSource(flags ResolveFlags, logger *zap.Logger) (lookup.Source, error) {
	page := func() lookup.Source {
		return lookup.NewPageSource(lookup.PageOptions{URLTemplate: flags.PageURL, Logger: logger})
	}
	dnsSource := func() lookup.Source {
		client := dnsclient.New(dnsclient.Options{Mode: dnsclient.ModeAuto, Logger: logger})
		return lookup.NewDNSSource(client, lookup.DNSOptions{Resolvers: flags.Resolvers, Logger: logger})
	}

	switch flags.Source {
	case "ipaddress":
		return page(), nil
	case "dns":
		return dnsSource(), nil
	case "all":
		return lookup.MultiSource{page(), dnsSource()}, nil
	}
	return nil, fmt.Errorf("unsupported source: %s", flags.Source)
}

func newPatcher(flags HostsFlags, overwriteBackup bool, logger *zap.Logger) (*hostsfile.Patcher, error) {
	p, err := platform.Current()
	if err != nil {
		return nil, err
	}
	return hostsfile.New(hostsfile.Options{
		Platform:        p.WithHostsPath(flags.HostsPath),
		Runner:          platform.NewExecRunner(platform.ExecOptions{Logger: logger}),
		OverwriteBackup: overwriteBackup,
		Logger:          logger,
	}), nil
}

func runContext(deadline time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	if deadline <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	return ctx, func() {
		cancel()
		stop()
	}
}

func render(report model.RunReport, format string) int {
	var rendered string
	var err error
	if format == "json" {
		rendered, err = output.RenderJSON(report)
	} else {
		rendered = output.RenderPretty(report)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	fmt.Println(rendered)
	if !analyze.Success(report.Diagnosis) {
		return 2
	}
	return 0
}

func mustLogger(flags LogFlags) *zap.Logger {
	logger, err := newLogger(flags.Verbose, flags.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return logger
}

func newLogger(verbose bool, debug bool) (*zap.Logger, error) {
	if debug {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return cfg.Build()
}
