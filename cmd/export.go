/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/technotes/apiserver/config"
	"github.com/technotes/apiserver/internal/server"
	"github.com/technotes/apiserver/internal/services"
	"github.com/technotes/apiserver/internal/storage"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all users and notes to object storage",
	Long: `Writes one JSON snapshot of every user (without credentials) and
every note to the configured object storage bucket and prints its key.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := config.LoadConfig()
		logger := newLogger(cfg)

		stores, err := server.OpenStores(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer stores.Close(ctx)

		objects, err := storage.Open(ctx, cfg.ObjectStorage)
		if err != nil {
			return err
		}

		key, err := services.NewExportService(stores.Users, stores.Notes, objects, logger).Export(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), key)
		return nil
	},
}

var exportShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Print a previously written export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := config.LoadConfig()

		objects, err := storage.Open(ctx, cfg.ObjectStorage)
		if err != nil {
			return err
		}

		rc, err := objects.Get(ctx, args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer rc.Close()

		_, err = io.Copy(cmd.OutOrStdout(), rc)
		return err
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportShowCmd)
}
