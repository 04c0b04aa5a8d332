/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/technotes/apiserver/config"
	"github.com/technotes/apiserver/internal/mq"
	"github.com/technotes/apiserver/types"
)

// eventsCmd represents the events command
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect change events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Log change events as they are published",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger := newLogger(cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		broker, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		defer broker.Close()

		logger.Info(ctx, "tailing change events", "backend", cfg.MQ.Backend, "channel", cfg.MQ.Channel)
		err = mq.TailEvents(ctx, broker, cfg.MQ.Channel, func(ctx context.Context, event types.Event) error {
			logger.Info(ctx, "event",
				"type", event.Type,
				"entity_id", event.EntityID,
				"name", event.Name,
				"occurred_at", event.OccurredAt,
			)
			return nil
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}
