package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthurdotwork/songroom/cmd"
	"github.com/arthurdotwork/songroom/internal/infrastructure/log"
	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Config(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sig
		slog.DebugContext(ctx, "received signal, shutting down")
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.ErrorContext(ctx, "error running command", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	root := &cobra.Command{
		Use:           "songroom",
		Short:         "realtime client for shared song-queue rooms",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "watch ROOM",
		Short: "render a room's queue as a passive player display",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Watch(ctx, c, args[0])
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "control ROOM",
		Short: "drive a room's queue interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Control(ctx, c, args[0])
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "rooms",
		Short: "list your rooms",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Rooms(ctx, c)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "create NAME",
		Short: "create a room and name it",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.CreateRoom(ctx, c, args[0])
		},
	})

	return root.ExecuteContext(ctx)
}
