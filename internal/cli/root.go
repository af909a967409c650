// Package cli provides the command-line interface of renderloop.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"renderloop/internal/config"
	"renderloop/internal/logger"
	"renderloop/internal/process"
	"renderloop/internal/session"
	"renderloop/internal/version"
)

// App represents the renderloop CLI application
type App struct {
	// Runner executes the renderer. Nil means a real child process.
	Runner process.Runner

	Stdout io.Writer
	Stderr io.Writer

	// Now is the wall clock used for timestamps and timing.
	Now func() time.Time

	// EnvFile is loaded into the environment before configuration is read.
	EnvFile string

	viper *viper.Viper
}

// NewApp creates a new renderloop CLI application
func NewApp() *App {
	return &App{
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Now:     time.Now,
		EnvFile: config.DefaultEnvFile,
	}
}

// CreateRootCommand creates and configures the root command
func (app *App) CreateRootCommand() *cobra.Command {
	app.viper = config.NewViper()

	rootCmd := &cobra.Command{
		Use:   "renderloop [options] <example name>",
		Short: "Run a renderer example repeatedly and time each run",
		Long: `renderloop builds and runs a renderer example in release mode one or more
times, writing each run's standard output to its own .ppm file under
out/<example name>/ and printing the wall-clock time of every run and of the
whole session.`,
		Example: `  renderloop scene1
  renderloop -n 5 -t scene2`,
		Version:       version.GetFormattedVersion(),
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          app.run,
	}

	flags := rootCmd.Flags()
	flags.StringP(config.KeyCount, "n", config.DefaultCount, "Number of times to run the example")
	flags.BoolP(config.KeyTimestamp, "t", false, "Include a timestamp in the output file name")
	flags.String(config.KeyOutDir, config.DefaultOutputRoot, "Directory that receives <example name>/ output folders")
	flags.String(config.KeyCargo, config.DefaultCargo, "Build-and-run tool used to invoke the example")
	flags.String(config.KeyReport, "", "Write a YAML session report to this file")

	persistent := rootCmd.PersistentFlags()
	persistent.String(config.KeyLogLevel, "", "Set log level (debug|info|warn|error) [default: info]")
	persistent.String(config.KeyLogFile, "", "Write logs to file instead of stderr")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &config.UsageError{Msg: err.Error()}
	})

	return rootCmd
}

// Execute runs the command line and returns the process exit code.
// It is the only place where errors are turned into exit codes.
func (app *App) Execute(ctx context.Context, args []string) int {
	if args == nil {
		args = []string{}
	}

	rootCmd := app.CreateRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(app.Stdout)
	rootCmd.SetErr(app.Stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	if config.IsUsageError(err) {
		fmt.Fprintf(app.Stderr, "Error: %v\n\n", err)
		fmt.Fprint(app.Stderr, rootCmd.UsageString())
		return 1
	}

	logger.Error("Render session failed", "error", err)
	return 1
}

func (app *App) run(cmd *cobra.Command, args []string) error {
	cfg, err := app.resolve(cmd, args)
	if err != nil {
		return err
	}

	if err := app.configureLogging(); err != nil {
		return err
	}

	logger.Debug("Resolved configuration", "example", cfg.ExampleName, "count", cfg.Count,
		"timestamp", cfg.IncludeTimestamp, "out_dir", cfg.OutputRoot, "cargo", cfg.Cargo)

	s := session.New(cfg, session.Options{
		Runner: app.runner(),
		Out:    cmd.OutOrStdout(),
		Now:    app.Now,
	})

	results, err := s.Run(cmd.Context())
	if err != nil {
		return err
	}

	logger.Debug("Render session finished", "example", cfg.ExampleName, "runs", len(results))
	return nil
}

// resolve merges .env, environment and flags and validates the result.
// It touches nothing on disk.
func (app *App) resolve(cmd *cobra.Command, args []string) (*config.Config, error) {
	if err := config.LoadDotEnv(app.EnvFile); err != nil {
		return nil, err
	}

	for _, key := range []string{config.KeyCount, config.KeyTimestamp, config.KeyOutDir, config.KeyCargo, config.KeyReport} {
		if err := app.viper.BindPFlag(key, cmd.Flags().Lookup(key)); err != nil {
			return nil, fmt.Errorf("error binding %s flag: %w", key, err)
		}
	}
	for _, key := range []string{config.KeyLogLevel, config.KeyLogFile} {
		if err := app.viper.BindPFlag(key, cmd.Root().PersistentFlags().Lookup(key)); err != nil {
			return nil, fmt.Errorf("error binding %s flag: %w", key, err)
		}
	}

	return config.Resolve(args, config.OptionsFromViper(app.viper))
}

func (app *App) configureLogging() error {
	logFile := app.viper.GetString(config.KeyLogFile)
	if err := logger.Configure(app.viper.GetString(config.KeyLogLevel), logFile); err != nil {
		return fmt.Errorf("error configuring logger: %w", err)
	}
	if logFile == "" && app.Stderr != nil {
		logger.SetOutput(app.Stderr)
	}
	return nil
}

func (app *App) runner() process.Runner {
	if app.Runner != nil {
		return app.Runner
	}
	return &process.ExecRunner{Stderr: app.Stderr}
}
