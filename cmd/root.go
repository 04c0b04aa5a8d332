/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/technotes/apiserver/config"
	"github.com/technotes/apiserver/internal/logging"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "technotes",
	Short: "Notes and users API server",
	Long: `technotes serves the notes and users HTTP API and carries the
maintenance commands that go with it: schema migrations, data export and
change event tailing.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) logging.Logger {
	if cfg.LogFormat == config.LogFormatConsole {
		return logging.NewConsole(os.Stderr, cfg.LogLevel)
	}
	return logging.New(os.Stderr, cfg.LogLevel)
}
