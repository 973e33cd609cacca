package platform

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/google/shlex"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type RunOptions struct {
	RequiresElevation bool
	Label             string
}

// Runner executes one shell command line.
type Runner interface {
	Run(ctx context.Context, command string, opts RunOptions) error
}

type ExecOptions struct {
	// Elevate is prefixed to commands needing elevation when the process
	// is not privileged.
	Elevate    []string
	Privileged func() bool
	Logger     *zap.Logger
}

type ExecRunner struct {
	opts ExecOptions
	exec func(ctx context.Context, argv []string) (stdout, stderr []byte, err error)
}

func NewExecRunner(opts ExecOptions) *ExecRunner {
	if opts.Elevate == nil {
		opts.Elevate = []string{"sudo"}
	}
	if opts.Privileged == nil {
		opts.Privileged = isPrivileged
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &ExecRunner{opts: opts, exec: execCommand}
}

func (r *ExecRunner) Run(ctx context.Context, command string, opts RunOptions) error {
	argv, err := r.Argv(command, opts)
	if err != nil {
		return err
	}
	r.opts.Logger.Info("running command", zap.String("label", opts.Label), zap.Strings("argv", argv))

	stdout, stderr, err := r.exec(ctx, argv)
	if err != nil {
		return errors.Wrapf(err, "%s: %s", opts.Label, strings.TrimSpace(string(stderr)))
	}
	// A command that reports on stderr is treated as failed even on a zero exit.
	if msg := strings.TrimSpace(string(stderr)); msg != "" {
		return errors.Errorf("%s: %s", opts.Label, msg)
	}
	r.opts.Logger.Debug("command finished", zap.String("label", opts.Label), zap.ByteString("stdout", stdout))
	return nil
}

// Argv splits command and adds the elevation prefix when required.
func (r *ExecRunner) Argv(command string, opts RunOptions) ([]string, error) {
	argv, err := shlex.Split(command)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s command", opts.Label)
	}
	if len(argv) == 0 {
		return nil, errors.Errorf("empty %s command", opts.Label)
	}
	if opts.RequiresElevation && !r.opts.Privileged() && len(r.opts.Elevate) > 0 {
		argv = append(append([]string{}, r.opts.Elevate...), argv...)
	}
	return argv, nil
}

func execCommand(ctx context.Context, argv []string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdin = os.Stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

func isPrivileged() bool {
	// Windows has no sudo; the process must already run elevated.
	if runtime.GOOS == "windows" {
		return true
	}
	return os.Geteuid() == 0
}
