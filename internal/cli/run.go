package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/secpipe/secpipe/internal/logging"
	"github.com/secpipe/secpipe/internal/output"
	"github.com/secpipe/secpipe/internal/runner"
	"github.com/secpipe/secpipe/internal/steps"
	"github.com/secpipe/secpipe/pkg/types"
)

var (
	profileFlag  string
	failFastFlag bool
)

var runCmd = &cobra.Command{
	Use:   "run [step...]",
	Short: "Run the configured scan steps",
	Long: `Runs the configured scan steps in order and prints the aggregated
report. With step names as arguments, only those steps run.

The process exits 0 when every step passed or every failure was on a
tolerant step, and non-zero only when a required step failed or the
run was interrupted.`,
	RunE: runSteps,
}

func init() {
	runCmd.Flags().StringVarP(&profileFlag, "profile", "p", "", "named profile of steps to run")
	runCmd.Flags().BoolVar(&failFastFlag, "fail-fast", false, "halt at the first failing step, overriding per-step policy")
}

func runSteps(cmd *cobra.Command, args []string) error {
	stepList := appConfig.StepList()

	if profileFlag != "" {
		profile := appConfig.GetProfile(profileFlag)
		if profile == nil {
			return fmt.Errorf("profile %q not found", profileFlag)
		}
		selected, err := steps.Select(stepList, profile.Steps)
		if err != nil {
			return err
		}
		stepList = selected
	}

	if len(args) > 0 {
		selected, err := steps.Select(stepList, args)
		if err != nil {
			return err
		}
		stepList = selected
	}

	if failFastFlag {
		for i := range stepList {
			stepList[i].ContinueOnFailure = false
		}
	}

	formatter, err := output.GetFormatter(outputFlag)
	if err != nil {
		return err
	}

	logger, err := logging.New(verboseFlag)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	// An interrupt kills the currently running tool and halts the sweep.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := runner.New(runner.Options{
		StepTimeout: timeoutFlag,
		Echo:        echoFlag,
		Logger:      logger,
	})

	report, err := r.Run(ctx, stepList)
	if err != nil {
		return err
	}

	if err := formatter.Format(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	if report.Status == types.StatusFatalFailure {
		// The report already tells the full story; suppress the usage dump.
		cmd.SilenceUsage = true
		if report.Cancelled {
			return errors.New("scan cancelled")
		}
		return errors.New("scan halted: a required step failed")
	}
	return nil
}
