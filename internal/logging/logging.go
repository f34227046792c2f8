// Package logging builds the zap logger used across secpipe.
package logging

import "go.uber.org/zap"

// New returns a console-encoded sugared logger. Verbose mode enables
// debug-level development output; otherwise only warnings and errors are
// emitted, keeping the terminal free for tool output and the report.
func New(verbose bool) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.Encoding = "console"

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
