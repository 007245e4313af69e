// Package logging builds the shared zap logger for CLI diagnostics.
package logging

import (
	"go.uber.org/zap"
)

// New returns a console-encoded SugaredLogger. Verbose enables debug
// output; otherwise only warnings and errors surface, keeping stderr
// quiet for scripted use.
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

// Nop returns a logger that discards everything; used in tests and as
// a default when callers pass nil.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
