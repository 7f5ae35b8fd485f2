package launchers

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"galaxy-datagen/internal/shared/loggers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helperEnv = "GALAXY_DATAGEN_HELPER_PROCESS"

// TestHelperProcess is not a real test. It stands in for the generator when
// the test binary re-executes itself: it writes its arguments, one per line,
// to the file named by the first argument after "--".
func TestHelperProcess(t *testing.T) {
	if os.Getenv(helperEnv) != "1" {
		return
	}
	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) < 2 {
		os.Exit(2)
	}
	out, rest := args[1], args[2:]
	if err := os.WriteFile(out, []byte(strings.Join(rest, "\n")), 0o644); err != nil {
		os.Exit(3)
	}
	if msg := os.Getenv("HELPER_STDERR"); msg != "" {
		_, _ = os.Stderr.WriteString(msg)
	}
	if os.Getenv("HELPER_EXIT_CODE") == "7" {
		os.Exit(7)
	}
	os.Exit(0)
}

func newHelperLauncher(t *testing.T, outFile string, env ...string) (*ExecLauncher, *bytes.Buffer) {
	t.Helper()
	return newHelperLauncherWithStderr(t, outFile, nil, env...)
}

func newHelperLauncherWithStderr(t *testing.T, outFile string, stderr io.Writer, env ...string) (*ExecLauncher, *bytes.Buffer) {
	t.Helper()

	var logs bytes.Buffer
	logger, err := loggers.NewWithWriter("debug", &logs)
	require.NoError(t, err)

	testBinary, err := os.Executable()
	require.NoError(t, err)

	launcher, err := NewExecLauncher(Options{
		Command:  testBinary,
		BaseArgs: []string{"-test.run=TestHelperProcess", "--", outFile},
		WorkDir:  t.TempDir(),
		Env:      append([]string{helperEnv + "=1"}, env...),
		Stderr:   stderr,
	}, logger)
	require.NoError(t, err)
	return launcher, &logs
}

func waitForExit(t *testing.T, launcher *ExecLauncher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, launcher.Wait(ctx))
}

func TestNewExecLauncher_EmptyCommand(t *testing.T) {
	t.Parallel()

	launcher, err := NewExecLauncher(Options{}, loggers.Nop())
	assert.Nil(t, launcher)
	assert.ErrorIs(t, err, ErrEmptyCommand)
}

func TestExecLauncher_Launch_PassesArguments(t *testing.T) {
	t.Parallel()

	outFile := filepath.Join(t.TempDir(), "args.txt")
	launcher, logs := newHelperLauncher(t, outFile)

	result, err := launcher.Launch(context.Background(), []string{"--output", "5000.csv", "--num_particles", "5000"})
	require.NoError(t, err)
	assert.Positive(t, result.PID)
	assert.True(t, strings.HasSuffix(result.CommandLine, "--output 5000.csv --num_particles 5000"), result.CommandLine)

	waitForExit(t, launcher)

	content, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, "--output\n5000.csv\n--num_particles\n5000", string(content))
	assert.Contains(t, logs.String(), `"exit_code":0`)
	assert.Contains(t, logs.String(), "generator exited")
}

func TestExecLauncher_Launch_ArgumentsAreNotShellParsed(t *testing.T) {
	t.Parallel()

	outFile := filepath.Join(t.TempDir(), "args.txt")
	launcher, _ := newHelperLauncher(t, outFile)

	hostile := "2; touch pwned"
	result, err := launcher.Launch(context.Background(), []string{hostile})
	require.NoError(t, err)
	assert.Contains(t, result.CommandLine, `'2; touch pwned'`)

	waitForExit(t, launcher)

	content, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, hostile, string(content))
}

func TestExecLauncher_Launch_NonZeroExitIsOnlyLogged(t *testing.T) {
	t.Parallel()

	outFile := filepath.Join(t.TempDir(), "args.txt")
	launcher, logs := newHelperLauncher(t, outFile, "HELPER_EXIT_CODE=7")

	_, err := launcher.Launch(context.Background(), []string{"2"})
	require.NoError(t, err)

	waitForExit(t, launcher)
	assert.Contains(t, logs.String(), `"exit_code":7`)
	assert.Contains(t, logs.String(), `"level":"warn"`)
}

func TestExecLauncher_Launch_ForwardsStderr(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	outFile := filepath.Join(t.TempDir(), "args.txt")
	launcher, _ := newHelperLauncherWithStderr(t, outFile, &stderr, "HELPER_STDERR=Traceback: boom")

	_, err := launcher.Launch(context.Background(), []string{"2"})
	require.NoError(t, err)

	waitForExit(t, launcher)
	assert.Contains(t, stderr.String(), "Traceback: boom")
}

func TestExecLauncher_Launch_CommandNotFound(t *testing.T) {
	t.Parallel()

	launcher, err := NewExecLauncher(Options{
		Command: filepath.Join(t.TempDir(), "no-such-generator"),
	}, loggers.Nop())
	require.NoError(t, err)

	result, err := launcher.Launch(context.Background(), []string{"--num_particles", "2"})
	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start")
}

func TestExecLauncher_Launch_CanceledContext(t *testing.T) {
	t.Parallel()

	launcher, err := NewExecLauncher(Options{Command: "true"}, loggers.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := launcher.Launch(ctx, nil)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecLauncher_Wait_NoChildren(t *testing.T) {
	t.Parallel()

	launcher, err := NewExecLauncher(Options{Command: "true"}, loggers.Nop())
	require.NoError(t, err)

	assert.NoError(t, launcher.Wait(context.Background()))
}
