package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/secpipe/secpipe/pkg/types"
)

// shStep builds a step around `sh -c`, keeping tests independent of any
// real scanning tool.
func shStep(name, script string, continueOnFailure bool) types.Step {
	return types.Step{
		Name:              name,
		Command:           "sh",
		Args:              []string{"-c", script},
		ContinueOnFailure: continueOnFailure,
	}
}

func TestRun_AllStepsExecuteWhenFailuresIgnored(t *testing.T) {
	r := New(DefaultOptions())
	steps := []types.Step{
		shStep("audit", "exit 0", true),
		shStep("lint", "exit 1", true),
		shStep("scan", "exit 0", true),
	}

	report, err := r.Run(context.Background(), steps)
	require.NoError(t, err)

	require.Len(t, report.Results, 3)
	assert.Equal(t, types.StatusSomeFailedIgnored, report.Status)
	assert.Equal(t, "audit", report.Results[0].Step.Name)
	assert.Equal(t, "lint", report.Results[1].Step.Name)
	assert.Equal(t, "scan", report.Results[2].Step.Name)
	assert.Equal(t, 0, report.Results[0].ExitCode)
	assert.Equal(t, 1, report.Results[1].ExitCode)
	assert.Equal(t, 0, report.Results[2].ExitCode)
}

func TestRun_AllPassed(t *testing.T) {
	r := New(DefaultOptions())
	steps := []types.Step{
		shStep("audit", "exit 0", true),
		shStep("lint", "true", false),
	}

	report, err := r.Run(context.Background(), steps)
	require.NoError(t, err)
	assert.Equal(t, types.StatusAllPassed, report.Status)
	assert.Len(t, report.Results, 2)
}

func TestRun_FatalFailureHaltsSequence(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "ran")
	r := New(DefaultOptions())
	steps := []types.Step{
		shStep("audit", "exit 1", false),
		shStep("lint", "touch "+marker, true),
	}

	report, err := r.Run(context.Background(), steps)
	require.NoError(t, err)

	require.Len(t, report.Results, 1)
	assert.Equal(t, "audit", report.Results[0].Step.Name)
	assert.Equal(t, types.StatusFatalFailure, report.Status)

	_, statErr := os.Stat(marker)
	assert.True(t, os.IsNotExist(statErr), "step after the fatal failure must not run")
}

func TestRun_LaunchFailure(t *testing.T) {
	r := New(DefaultOptions())
	steps := []types.Step{
		{Name: "missing", Command: "secpipe-no-such-tool", ContinueOnFailure: true},
	}

	report, err := r.Run(context.Background(), steps)
	require.NoError(t, err)

	require.Len(t, report.Results, 1)
	res := report.Results[0]
	assert.False(t, res.Started)
	assert.Equal(t, types.ExitLaunchFailure, res.ExitCode)
	assert.NotEmpty(t, res.Error)
	assert.Equal(t, types.StatusSomeFailedIgnored, report.Status)
}

func TestRun_LaunchFailureIsFullyRecorded(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	opts := DefaultOptions()
	opts.Logger = zap.New(core).Sugar()

	r := New(opts)
	report, err := r.Run(context.Background(), []types.Step{
		{Name: "missing", Command: "secpipe-no-such-tool", ContinueOnFailure: true},
	})
	require.NoError(t, err)

	res := report.Results[0]
	assert.False(t, res.CompletedAt.IsZero())
	assert.False(t, res.CompletedAt.Before(res.StartedAt))
	assert.GreaterOrEqual(t, res.DurationMillis, int64(0))

	finished := logs.FilterMessage("step finished").All()
	require.Len(t, finished, 1, "launch failures must log step completion like every other outcome")
	assert.Equal(t, int64(types.ExitLaunchFailure), finished[0].ContextMap()["exit_code"])
}

func TestRun_Timeout(t *testing.T) {
	r := New(DefaultOptions())
	step := types.Step{
		Name:              "slow",
		Command:           "sleep",
		Args:              []string{"5"},
		ContinueOnFailure: true,
		Timeout:           200 * time.Millisecond,
	}

	start := time.Now()
	report, err := r.Run(context.Background(), []types.Step{step})
	elapsed := time.Since(start)
	require.NoError(t, err)

	require.Len(t, report.Results, 1)
	res := report.Results[0]
	assert.True(t, res.TimedOut)
	assert.Equal(t, types.ExitTimeout, res.ExitCode)
	assert.Less(t, elapsed, 3*time.Second, "runner must kill the process, not wait it out")
	assert.Equal(t, types.StatusSomeFailedIgnored, report.Status)
}

func TestRun_TimeoutIsFatalWithoutContinue(t *testing.T) {
	r := New(DefaultOptions())
	steps := []types.Step{
		{Name: "slow", Command: "sleep", Args: []string{"5"}, Timeout: 200 * time.Millisecond},
		shStep("after", "exit 0", true),
	}

	report, err := r.Run(context.Background(), steps)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, types.StatusFatalFailure, report.Status)
}

func TestRun_CancellationKillsChild(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	r := New(DefaultOptions())
	steps := []types.Step{
		{Name: "slow", Command: "sleep", Args: []string{"5"}, ContinueOnFailure: true},
		shStep("after", "exit 0", true),
	}

	start := time.Now()
	report, err := r.Run(ctx, steps)
	elapsed := time.Since(start)
	require.NoError(t, err)

	assert.True(t, report.Cancelled)
	assert.Equal(t, types.StatusFatalFailure, report.Status)
	require.Len(t, report.Results, 1)
	assert.Equal(t, types.ExitCancelled, report.Results[0].ExitCode)
	assert.Less(t, elapsed, 3*time.Second, "cancellation must propagate to the child")
}

func TestRun_CapturesOutput(t *testing.T) {
	r := New(DefaultOptions())
	steps := []types.Step{
		shStep("noisy", "echo report line; echo warning 1>&2", true),
	}

	report, err := r.Run(context.Background(), steps)
	require.NoError(t, err)

	res := report.Results[0]
	assert.Contains(t, res.Stdout, "report line")
	assert.Contains(t, res.Stderr, "warning")
}

func TestRun_StepDirAndEnv(t *testing.T) {
	dir := t.TempDir()
	r := New(DefaultOptions())
	steps := []types.Step{
		{
			Name:    "where",
			Command: "sh",
			Args:    []string{"-c", "pwd; echo $SECPIPE_TEST_VAR"},
			Dir:     dir,
			Env:     []string{"SECPIPE_TEST_VAR=wired"},
		},
	}

	report, err := r.Run(context.Background(), steps)
	require.NoError(t, err)

	res := report.Results[0]
	assert.Contains(t, res.Stdout, filepath.Base(dir))
	assert.Contains(t, res.Stdout, "wired")
}

func TestRun_ReportMetadata(t *testing.T) {
	r := New(DefaultOptions())
	report, err := r.Run(context.Background(), []types.Step{shStep("audit", "exit 0", true)})
	require.NoError(t, err)

	_, parseErr := uuid.Parse(report.ID)
	assert.NoError(t, parseErr)
	assert.False(t, report.StartedAt.After(report.CompletedAt))
	assert.GreaterOrEqual(t, report.Results[0].DurationMillis, int64(0))
}

func TestRun_Idempotence(t *testing.T) {
	r := New(DefaultOptions())
	steps := []types.Step{
		shStep("audit", "exit 0", true),
		shStep("lint", "exit 3", true),
	}

	first, err := r.Run(context.Background(), steps)
	require.NoError(t, err)
	second, err := r.Run(context.Background(), steps)
	require.NoError(t, err)

	require.Len(t, second.Results, len(first.Results))
	for i := range first.Results {
		assert.Equal(t, first.Results[i].ExitCode, second.Results[i].ExitCode)
	}
	assert.Equal(t, first.Status, second.Status)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestRun_PreconditionErrors(t *testing.T) {
	r := New(DefaultOptions())

	t.Run("empty step list", func(t *testing.T) {
		_, err := r.Run(context.Background(), nil)
		assert.Error(t, err)
	})

	t.Run("duplicate names", func(t *testing.T) {
		_, err := r.Run(context.Background(), []types.Step{
			shStep("audit", "exit 0", true),
			shStep("audit", "exit 0", true),
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("invalid step", func(t *testing.T) {
		_, err := r.Run(context.Background(), []types.Step{{Name: "broken"}})
		assert.Error(t, err)
	})
}
