package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	serverhttp "skillstream/internal/server/http"
	"skillstream/internal/shared/logging"
)

func newServeCommand(state *cliState) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the streaming HTTP server",
		Long: `Serve starts the HTTP server: raw runtime events are POSTed to
/api/sessions/:id/events and normalized frames stream out over /api/stream
(SSE) and /ws (websocket). Skills metadata is served under /api/skills.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.initialize(); err != nil {
				return err
			}

			cfg := state.cfg.Server
			if addr != "" {
				cfg.Addr = addr
			}

			logger := logging.NewComponentLogger("server")
			server := serverhttp.New(cfg, state.library, logger)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Println(cyan("skillstream server listening on " + cfg.Addr))
			return server.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}
