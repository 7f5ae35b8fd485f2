package launchers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"sync"
	"time"

	"galaxy-datagen/internal/shared/loggers"
	"galaxy-datagen/internal/shared/metrics"

	"al.essio.dev/pkg/shellescape"
)

const errorCodeStartFailed = "GEN_9000"

var ErrEmptyCommand = errors.New("generator command cannot be empty")

// LaunchResult identifies a started generator process.
type LaunchResult struct {
	PID         int
	CommandLine string // shell-quoted, for logs only
}

// Launcher starts the external data-set generator. Launch returns as soon as
// the process has started; it never waits for, retries or inspects the child.
//
//go:generate mockgen -source=launcher.go -destination=./mocks/launcher_mock.go -package=mocks
type Launcher interface {
	Launch(ctx context.Context, args []string) (*LaunchResult, error)
}

// Options configures the generator command. Args passed to Launch are
// appended after BaseArgs.
type Options struct {
	Command  string
	BaseArgs []string
	WorkDir  string
	Env      []string  // added to the inherited environment
	Stderr   io.Writer // generator stderr; nil discards it. Stdout is always discarded.
}

// ExecLauncher runs the generator as a direct child process, without a shell,
// so arguments are never re-parsed.
type ExecLauncher struct {
	opts   Options
	logger loggers.Logger
	wg     sync.WaitGroup
}

func NewExecLauncher(opts Options, logger loggers.Logger) (*ExecLauncher, error) {
	if opts.Command == "" {
		return nil, ErrEmptyCommand
	}
	return &ExecLauncher{opts: opts, logger: logger}, nil
}

func (l *ExecLauncher) Launch(ctx context.Context, args []string) (*LaunchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	argv := append(slices.Clone(l.opts.BaseArgs), args...)
	commandLine := shellescape.QuoteCommand(append([]string{l.opts.Command}, argv...))

	// not bound to ctx: the generator outlives the request that started it
	cmd := exec.Command(l.opts.Command, argv...)
	cmd.Dir = l.opts.WorkDir
	cmd.Stderr = l.opts.Stderr
	if len(l.opts.Env) > 0 {
		cmd.Env = append(os.Environ(), l.opts.Env...)
	}

	if err := cmd.Start(); err != nil {
		metricGeneratorLaunchedTotal.WithLabelValues(errorCodeStartFailed).Inc()
		return nil, fmt.Errorf("failed to start %s: %w", commandLine, err)
	}
	metricGeneratorLaunchedTotal.WithLabelValues(metrics.ValueNoError).Inc()

	pid := cmd.Process.Pid
	l.logger.Debug().
		Int(loggers.FieldPID, pid).
		Str(loggers.FieldCommandLine, commandLine).
		Msg("generator started")

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.reap(cmd, pid, commandLine)
	}()

	return &LaunchResult{PID: pid, CommandLine: commandLine}, nil
}

// reap collects the exit status so finished generators do not linger as zombies.
func (l *ExecLauncher) reap(cmd *exec.Cmd, pid int, commandLine string) {
	start := time.Now()
	err := cmd.Wait()

	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	metricGeneratorExitedTotal.WithLabelValues(strconv.Itoa(exitCode)).Inc()

	event := l.logger.Info()
	if err != nil {
		event = l.logger.Warn().Err(err)
	}
	event.
		Int(loggers.FieldPID, pid).
		Int(loggers.FieldExitCode, exitCode).
		Str(loggers.FieldCommandLine, commandLine).
		Int64(loggers.FieldDuration, time.Since(start).Milliseconds()).
		Msg("generator exited")
}

// Wait blocks until every started generator has exited or ctx is done.
func (l *ExecLauncher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
