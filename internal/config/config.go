// Package config resolves renderloop's command line into a validated Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Default configuration values
const (
	DefaultCount      = "1"
	DefaultOutputRoot = "out"
	DefaultCargo      = "cargo"
	DefaultEnvFile    = ".env"

	// EnvPrefix namespaces the environment variables viper reads, e.g. RENDERLOOP_COUNT.
	EnvPrefix = "RENDERLOOP"
)

// Keys shared by the cobra flags and viper.
const (
	KeyCount     = "count"
	KeyTimestamp = "timestamp"
	KeyOutDir    = "out-dir"
	KeyCargo     = "cargo"
	KeyReport    = "report"
	KeyLogLevel  = "log-level"
	KeyLogFile   = "log-file"
)

// Config is the resolved, immutable session configuration.
type Config struct {
	// ExampleName selects the renderer example to build and run.
	ExampleName string

	// Count is the number of sequential runs, always > 0.
	Count int

	// IncludeTimestamp prefixes every output file with the session timestamp.
	IncludeTimestamp bool

	// OutputRoot is the directory under which <ExampleName>/ is created.
	OutputRoot string

	// Cargo is the build-and-run tool invoked for every run.
	Cargo string

	// ReportPath enables the YAML session report when non-empty.
	ReportPath string
}

// Options holds the raw, unvalidated flag values.
type Options struct {
	Count      string
	Timestamp  bool
	OutputRoot string
	Cargo      string
	ReportPath string
}

// UsageError reports a command line the user has to correct.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}

// IsUsageError reports whether err is, or wraps, a *UsageError.
func IsUsageError(err error) bool {
	var usageErr *UsageError
	return errors.As(err, &usageErr)
}

func usageErrorf(format string, args ...interface{}) error {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// Resolve validates positional arguments and flag values. It has no side effects.
func Resolve(args []string, opts Options) (*Config, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return nil, usageErrorf("expected exactly one example name argument")
	}

	raw := opts.Count
	if raw == "" {
		raw = DefaultCount
	}
	count, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || count <= 0 {
		return nil, usageErrorf("count must be a positive integer, got %q", raw)
	}

	cfg := &Config{
		ExampleName:      args[0],
		Count:            count,
		IncludeTimestamp: opts.Timestamp,
		OutputRoot:       opts.OutputRoot,
		Cargo:            opts.Cargo,
		ReportPath:       opts.ReportPath,
	}
	if cfg.OutputRoot == "" {
		cfg.OutputRoot = DefaultOutputRoot
	}
	if cfg.Cargo == "" {
		cfg.Cargo = DefaultCargo
	}

	return cfg, nil
}

// NewViper returns a viper instance with renderloop's defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyCount, DefaultCount)
	v.SetDefault(KeyTimestamp, false)
	v.SetDefault(KeyOutDir, DefaultOutputRoot)
	v.SetDefault(KeyCargo, DefaultCargo)
	v.SetDefault(KeyReport, "")
	v.SetDefault(KeyLogLevel, "")
	v.SetDefault(KeyLogFile, "")

	return v
}

// OptionsFromViper reads the raw flag values after flags, env and defaults are merged.
func OptionsFromViper(v *viper.Viper) Options {
	return Options{
		Count:      v.GetString(KeyCount),
		Timestamp:  v.GetBool(KeyTimestamp),
		OutputRoot: v.GetString(KeyOutDir),
		Cargo:      v.GetString(KeyCargo),
		ReportPath: v.GetString(KeyReport),
	}
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
