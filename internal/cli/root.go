// Package cli wires the tasbot commands: learn, play, and helper.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ddugovic/tasbot/internal/daemon"
)

var (
	cfgPath string
	verbose bool

	cfg    daemon.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tasbot",
	Short: "Learn what progress looks like, then search for more of it",
	Long: `tasbot automates play of an 8-bit console. "learn" derives a weighted
set of RAM objectives and a motif library from a recorded human input
trace; "play" extends the trace by lookahead search over those
objectives; "helper" serves scoring work to a remote master.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = daemon.Load(cfgPath)
		if err != nil {
			return err
		}
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(level).
			With().Timestamp().Logger()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ~/.tasbot/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tasbot version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(os.Stdout, "tasbot 0.1.0")
	},
}

// Execute runs the root command. Configuration errors abort with a
// printable message and a non-zero exit.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
