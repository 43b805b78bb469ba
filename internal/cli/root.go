package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tessro/bard/internal/config"
	berrors "github.com/tessro/bard/internal/errors"
	"github.com/tessro/bard/internal/logging"
)

var (
	cfgFile string
	jsonOut bool
	verbose bool
	debug   bool

	cfg     *config.Config
	logFile string
)

var rootCmd = &cobra.Command{
	Use:   "bard",
	Short: "Themed soundtrack player for tabletop sessions",
	Long: `Bard plays ambient soundtracks and battle cues from a catalog.

Run without a subcommand to open the dashboard.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE:          runTUI,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.bardrc)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write a debug log file")
	addTUIFlags(rootCmd)
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("%w: %w", berrors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", berrors.ErrInvalidConfig, err)
	}

	logFile, err = logging.Initialize(cfg.Log.Level, cfg.Log.File, debug)
	if err != nil {
		return err
	}
	if logFile != "" && Verbose() {
		fmt.Fprintf(os.Stderr, "Logging to %s\n", logFile)
	}

	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, berrors.Format(err))
		os.Exit(1)
	}
}

// Config returns the loaded configuration.
func Config() *config.Config {
	return cfg
}

// JSONOutput returns true if JSON output is requested.
func JSONOutput() bool {
	return jsonOut
}

// Verbose returns true if verbose output is requested.
func Verbose() bool {
	return verbose
}
