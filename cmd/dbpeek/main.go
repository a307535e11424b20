package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bgunnarsson/dbpeek/internal/app"
	"github.com/bgunnarsson/dbpeek/internal/config"
	"github.com/bgunnarsson/dbpeek/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dbpeek [path]",
		Short: "Print every table of a database",
		Long: `dbpeek opens a database read-only and prints, for each table, its column
names and all of its rows. Without arguments it reads ` + config.DefaultPath + `.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args)
		},
	}

	rootCmd.Flags().StringP("config", "c", "", "YAML config file (or set "+config.EnvConfig+" env var)")
	rootCmd.Flags().StringP("db", "d", config.DefaultPath, "Database path, or DSN for non-sqlite drivers (or set "+config.EnvPath+" env var)")
	rootCmd.Flags().String("driver", string(config.DriverSqlite), "Database driver: sqlite, postgres, mysql, mssql (or set "+config.EnvDriver+" env var)")
	rootCmd.Flags().StringP("format", "f", config.DefaultFormat, "Output format: plain or table")
	rootCmd.Flags().Int("max-width", config.DefaultMaxWidth, "Maximum column width for --format table")
	rootCmd.Flags().Bool("no-color", false, "Disable styled headings on terminals")
	rootCmd.Flags().CountP("verbose", "v", "Increase verbosity (-v debug, -vv trace)")
	rootCmd.Flags().String("log-file", "", "Also write logs to this rotating file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dbpeek %s (commit: %s, built: %s)\n", version, commit, date)
		},
	})

	return rootCmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd.Flags(), args, os.Getenv)
	if err != nil {
		return err
	}

	closeLog := logging.Setup(os.Stderr, cfg.Log)
	defer closeLog()

	out := cmd.OutOrStdout()
	return app.Run(cmd.Context(), cfg, out, isStyled(out, cfg))
}

// resolveConfig layers defaults, config file, environment, flags and the
// positional path, later ones winning.
func resolveConfig(fl *pflag.FlagSet, args []string, getenv func(string) string) (*config.Config, error) {
	cfg := config.Default()

	configPath, _ := fl.GetString("config")
	if configPath == "" {
		configPath = getenv(config.EnvConfig)
	}
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.ApplyEnv(getenv)

	if fl.Changed("db") {
		cfg.Path, _ = fl.GetString("db")
	}
	if fl.Changed("driver") {
		driver, _ := fl.GetString("driver")
		cfg.Driver = config.Driver(driver)
	}
	if fl.Changed("format") {
		cfg.Output.Format, _ = fl.GetString("format")
	}
	if fl.Changed("max-width") {
		cfg.Output.MaxWidth, _ = fl.GetInt("max-width")
	}
	if fl.Changed("no-color") {
		cfg.Output.NoColor, _ = fl.GetBool("no-color")
	}
	if fl.Changed("log-file") {
		cfg.Log.File, _ = fl.GetString("log-file")
	}
	verbosity, _ := fl.GetCount("verbose")
	cfg.Log.Level = logging.LevelFromVerbosity(verbosity, cfg.Log.Level)

	if len(args) == 1 {
		cfg.Path = args[0]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isStyled(out io.Writer, cfg *config.Config) bool {
	if cfg.Output.NoColor {
		return false
	}
	fd, ok := out.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(fd.Fd()))
}
