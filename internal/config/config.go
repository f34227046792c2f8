// Package config provides configuration loading for secpipe.
// It supports a layered configuration approach with priority:
// CLI flags > environment variables (SECPIPE_*) > config file (~/.secpipe.yaml).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/secpipe/secpipe/internal/steps"
	"github.com/secpipe/secpipe/pkg/types"
)

// StepConfig is the file representation of a scan step. ContinueOnFailure
// is a pointer so that omitting it keeps the sweep's tolerant default.
type StepConfig struct {
	Name              string        `mapstructure:"name" yaml:"name"`
	Command           string        `mapstructure:"command" yaml:"command"`
	Args              []string      `mapstructure:"args" yaml:"args"`
	ContinueOnFailure *bool         `mapstructure:"continue_on_failure" yaml:"continue_on_failure"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Dir               string        `mapstructure:"dir" yaml:"dir"`
}

// Profile defines a named subset of steps to run together.
type Profile struct {
	Name  string   `mapstructure:"name" yaml:"name"`
	Steps []string `mapstructure:"steps" yaml:"steps"`
}

// Config holds all secpipe configuration options.
type Config struct {
	OutputFormat string            `mapstructure:"output_format" yaml:"output_format"`
	StepTimeout  time.Duration     `mapstructure:"step_timeout" yaml:"step_timeout"`
	Echo         bool              `mapstructure:"echo" yaml:"echo"`
	Verbose      bool              `mapstructure:"verbose" yaml:"verbose"`
	ToolPaths    map[string]string `mapstructure:"tool_paths" yaml:"tool_paths"`
	Steps        []StepConfig      `mapstructure:"steps" yaml:"steps"`
	Profiles     []Profile         `mapstructure:"profiles" yaml:"profiles"`
}

// Defaults returns a Config populated with default values.
func Defaults() Config {
	return Config{
		OutputFormat: "table",
		StepTimeout:  10 * time.Minute,
	}
}

// Load reads configuration from ~/.secpipe.yaml and environment variables.
// It does NOT apply CLI flag overrides — call ApplyFlags for that.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(".secpipe")
	v.SetConfigType("yaml")

	home, err := os.UserHomeDir()
	if err == nil {
		v.AddConfigPath(home)
	}

	v.SetEnvPrefix("SECPIPE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)

	v.SetEnvPrefix("SECPIPE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// ApplyFlags overrides config values with any CLI flags that were explicitly set.
func ApplyFlags(cfg *Config, cmd *cobra.Command) {
	flags := cmd.Flags()

	if flags.Changed("output") {
		val, _ := flags.GetString("output")
		cfg.OutputFormat = val
	}
	if flags.Changed("timeout") {
		val, _ := flags.GetDuration("timeout")
		cfg.StepTimeout = val
	}
	if flags.Changed("echo") {
		val, _ := flags.GetBool("echo")
		cfg.Echo = val
	}
	if flags.Changed("verbose") {
		val, _ := flags.GetBool("verbose")
		cfg.Verbose = val
	}
}

// GetProfile returns the profile with the given name, or nil if not found.
func (c *Config) GetProfile(name string) *Profile {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i]
		}
	}
	return nil
}

// StepList resolves the steps to run: the configured list when one is
// present, otherwise the builtin catalog, with tool path overrides applied
// either way. Steps configured without continue_on_failure keep the
// tolerant sweep default.
func (c *Config) StepList() []types.Step {
	if len(c.Steps) == 0 {
		return steps.ApplyToolPaths(steps.Defaults(), c.ToolPaths)
	}

	list := make([]types.Step, 0, len(c.Steps))
	for _, sc := range c.Steps {
		step := types.Step{
			Name:              sc.Name,
			Command:           sc.Command,
			Args:              sc.Args,
			ContinueOnFailure: true,
			Timeout:           sc.Timeout,
			Dir:               sc.Dir,
		}
		if sc.ContinueOnFailure != nil {
			step.ContinueOnFailure = *sc.ContinueOnFailure
		}
		list = append(list, step)
	}
	return steps.ApplyToolPaths(list, c.ToolPaths)
}

// ConfigFilePath returns the default config file path (~/.secpipe.yaml).
func ConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".secpipe.yaml"
	}
	return filepath.Join(home, ".secpipe.yaml")
}

func setDefaults(v *viper.Viper) {
	// Every scalar option needs a default registered: AutomaticEnv only
	// surfaces SECPIPE_* values through Unmarshal for keys viper knows.
	v.SetDefault("output_format", "table")
	v.SetDefault("step_timeout", 10*time.Minute)
	v.SetDefault("echo", false)
	v.SetDefault("verbose", false)
}
