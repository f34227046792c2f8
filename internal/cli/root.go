package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/secpipe/secpipe/internal/config"
)

var version = "dev"

var (
	configFlag  string
	outputFlag  string
	timeoutFlag time.Duration
	echoFlag    bool
	verboseFlag bool
)

// appConfig holds the loaded configuration, available after PersistentPreRunE.
var appConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "secpipe",
	Short: "secpipe — security scan orchestration runner",
	Long: `secpipe runs a configurable sequence of external security-analysis
tools (dependency audit, static lint, pattern scan, quality scan),
captures their results, and reports a unified outcome.

A step that finds issues does not stop the sweep unless it is
configured with continue_on_failure: false.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var cfg *config.Config
		var err error
		if configFlag != "" {
			cfg, err = config.LoadFromFile(configFlag)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		config.ApplyFlags(cfg, cmd)

		// Sync config values back to flag variables so all commands pick up
		// config-file and env-var defaults transparently.
		outputFlag = cfg.OutputFormat
		timeoutFlag = cfg.StepTimeout
		echoFlag = cfg.Echo
		verboseFlag = cfg.Verbose

		appConfig = cfg
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default ~/.secpipe.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "table", "output format: table, json, markdown, html")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 10*time.Minute, "default per-step timeout")
	rootCmd.PersistentFlags().BoolVar(&echoFlag, "echo", false, "mirror tool output to the terminal while capturing it")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(stepsCmd)
	rootCmd.AddCommand(versionCmd)
}
