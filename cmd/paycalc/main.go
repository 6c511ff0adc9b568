/*
main.go - paycalc command-line entry point

PURPOSE:
  One binary for the deduction estimator: run the HTTP API, calculate a
  single week from the shell, and manage constant sets.

COMMANDS:
  serve                     Start the HTTP API
  calc                      Calculate one week's deductions
  constants list            Built-in and stored constant sets
  constants show <id>       Print a set as YAML or JSON
  constants import <file>   Validate a file and store it

CONFIGURATION:
  Flags default to PAYCALC_* environment variables (see config package).
  Explicit flags win over the environment.

EXAMPLES:
  paycalc calc --taxable 1500 --non-taxable 100
  paycalc calc --taxable 1500 --mode annualized --dues-rate 0 --round 4
  paycalc constants import constants/ab-2024.json --db ./paycalc.db
  paycalc serve --addr :9090 --redis localhost:6379

SEE ALSO:
  - api/server.go: Routes served by 'serve'
  - payroll/calculator.go: Calculation used by 'calc'
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/paycalc/config"
	"github.com/warp/paycalc/factory"
	"github.com/warp/paycalc/logging"
	"github.com/warp/paycalc/payroll"
	"go.uber.org/zap"
)

var (
	// Global flags, defaulted from the environment
	cfg = config.Load()

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:           "paycalc",
	Short:         "Weekly payroll deduction estimator (CPP, CPP2, EI, income tax, dues)",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		var err error
		logger, err = logging.New(cfg.LogLevel, cfg.Environment)
		if err != nil {
			return err
		}

		return registerConstantsFile(cfg.ConstantsFile)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// registerConstantsFile makes a file's set available by id to every command.
func registerConstantsFile(path string) error {
	if path == "" {
		return nil
	}
	cs, err := factory.NewConstantSetFactory().ParseFile(path)
	if err != nil {
		return fmt.Errorf("failed to load constants file: %w", err)
	}
	payroll.RegisterConstantSet(cs)
	logger.Debug("registered constant set from file", zap.String("id", cs.ID), zap.String("path", path))
	return nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "SQLite database path (\":memory:\" for in-memory)")
	pf.StringVar(&cfg.ConstantsFile, "constants-file", cfg.ConstantsFile, "Extra constant-set file (.yaml/.json) to register")
	pf.StringVar(&cfg.DefaultSet, "set", cfg.DefaultSet, "Constant set id")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pf.StringVar(&cfg.Environment, "env", cfg.Environment, "Environment (development, production, test)")

	constantsCmd.AddCommand(constantsListCmd)
	constantsCmd.AddCommand(constantsShowCmd)
	constantsCmd.AddCommand(constantsImportCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(calcCmd)
	rootCmd.AddCommand(constantsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
