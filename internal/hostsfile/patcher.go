package hostsfile

import (
	"context"
	"time"

	"github.com/jaxxstorm/quicken/internal/model"
	"github.com/jaxxstorm/quicken/internal/platform"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrBackup = errors.New("hosts backup failed")
	ErrFileIO = errors.New("hosts file io failed")
	ErrFlush  = errors.New("dns cache flush failed")

	// ErrCorruptBlock also matches ErrFileIO.
	ErrCorruptBlock = errors.WithMessage(ErrFileIO, "corrupt managed block")
)

const (
	labelBackup  = "backup"
	labelRestore = "restore"
	labelFlush   = "flushDns"
)

type Options struct {
	Platform platform.Platform
	FS       FileSystem
	Runner   platform.Runner
	Now      func() time.Time
	// OverwriteBackup refreshes an existing backup. By default the first
	// backup is kept as the pristine restore point.
	OverwriteBackup bool
	Logger          *zap.Logger
}

type Patcher struct {
	opts Options
}

// Result of one Apply. FlushErr is set when the hosts file was written but
// the DNS cache flush failed.
type Result struct {
	Changed  bool
	FlushErr error
}

func New(opts Options) *Patcher {
	if opts.FS == nil {
		opts.FS = OSFileSystem{}
	}
	if opts.Runner == nil {
		opts.Runner = platform.NewExecRunner(platform.ExecOptions{Logger: opts.Logger})
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Patcher{opts: opts}
}

// Apply backs up the hosts file, then rewrites its managed block with
// groups when the block content differs.
func (p *Patcher) Apply(ctx context.Context, groups []model.ResolvedGroup) (Result, error) {
	logger := p.opts.Logger.With(zap.String("path", p.opts.Platform.HostsPath))

	if err := p.Backup(ctx); err != nil {
		return Result{}, err
	}

	doc, err := p.Load()
	if err != nil {
		return Result{}, err
	}

	rendered := RenderHosts(groups, doc.LineEnding)
	content, changed, err := Patch(doc.Content, rendered, doc.LineEnding, p.opts.Now())
	if err != nil {
		return Result{}, errors.Wrap(err, doc.Path)
	}
	if !changed {
		logger.Info("hosts already up to date")
		return Result{}, nil
	}

	if err := p.opts.FS.WriteFile(doc.Path, []byte(content)); err != nil {
		return Result{}, errors.Wrapf(ErrFileIO, "write %s: %v", doc.Path, err)
	}
	logger.Info("hosts updated")

	result := Result{Changed: true}
	if err := p.Flush(ctx); err != nil {
		logger.Warn("hosts updated but dns cache flush failed", zap.Error(err))
		result.FlushErr = err
	}
	return result, nil
}

func (p *Patcher) Load() (*Document, error) {
	path := p.opts.Platform.HostsPath
	data, err := p.opts.FS.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrFileIO, "read %s: %v", path, err)
	}
	return NewDocument(path, string(data)), nil
}

// Backup copies the hosts file to the backup path. Failure aborts any
// update.
func (p *Patcher) Backup(ctx context.Context) error {
	hosts, backup := p.opts.Platform.HostsPath, p.opts.Platform.BackupPath()

	if !p.opts.OverwriteBackup {
		exists, err := p.opts.FS.Exists(backup)
		if err != nil {
			return errors.Wrapf(ErrBackup, "stat %s: %v", backup, err)
		}
		if exists {
			p.opts.Logger.Debug("keeping existing backup", zap.String("backup", backup))
			return nil
		}
	}

	exists, err := p.opts.FS.Exists(hosts)
	if err != nil {
		return errors.Wrapf(ErrBackup, "stat %s: %v", hosts, err)
	}
	if !exists {
		return errors.Wrapf(ErrBackup, "source %s missing", hosts)
	}
	cmd := p.opts.Platform.CopyFile(hosts, backup)
	if err := p.opts.Runner.Run(ctx, cmd, platform.RunOptions{RequiresElevation: true, Label: labelBackup}); err != nil {
		return errors.Wrapf(ErrBackup, "%v", err)
	}
	p.opts.Logger.Info("hosts backed up", zap.String("backup", backup))
	return nil
}

// Restore copies the backup over the hosts file and flushes the DNS cache.
func (p *Patcher) Restore(ctx context.Context) (Result, error) {
	hosts, backup := p.opts.Platform.HostsPath, p.opts.Platform.BackupPath()

	exists, err := p.opts.FS.Exists(backup)
	if err != nil {
		return Result{}, errors.Wrapf(ErrFileIO, "stat %s: %v", backup, err)
	}
	if !exists {
		return Result{}, errors.Wrapf(ErrFileIO, "backup %s missing", backup)
	}
	cmd := p.opts.Platform.CopyFile(backup, hosts)
	if err := p.opts.Runner.Run(ctx, cmd, platform.RunOptions{RequiresElevation: true, Label: labelRestore}); err != nil {
		return Result{}, errors.Wrapf(ErrFileIO, "restore %s: %v", hosts, err)
	}
	p.opts.Logger.Info("hosts restored", zap.String("backup", backup))

	result := Result{Changed: true}
	if err := p.Flush(ctx); err != nil {
		p.opts.Logger.Warn("hosts restored but dns cache flush failed", zap.Error(err))
		result.FlushErr = err
	}
	return result, nil
}

func (p *Patcher) Flush(ctx context.Context) error {
	err := p.opts.Runner.Run(ctx, p.opts.Platform.FlushCommand, platform.RunOptions{RequiresElevation: true, Label: labelFlush})
	if err != nil {
		return errors.Wrapf(ErrFlush, "%v", err)
	}
	return nil
}
