package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-zaaknotify/core"
	"github.com/goliatone/go-zaaknotify/transport/rest"
)

func serveCmd() *cobra.Command {
	var portalBaseURL string
	var rateLimitWindowSeconds int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run database migrations and start the notification endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := processEnvironment()
			if err != nil {
				return err
			}

			// Flags are the runtime layer and win over environment values.
			runtime := core.Config{
				PortalBaseURL:          portalBaseURL,
				RateLimitWindowSeconds: rateLimitWindowSeconds,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := buildApp(ctx, env, runtime)
			if err != nil {
				return err
			}
			defer application.close()

			server := rest.NewServer(application.processor, application.feed, application.auditor)
			return server.Start(ctx, env.Port)
		},
	}

	cmd.Flags().StringVar(&portalBaseURL, "portal-base-url", "", "override the portal base url used in notification links")
	cmd.Flags().IntVar(&rateLimitWindowSeconds, "rate-limit-window-seconds", 0, "override the per-user rate limit window")

	return cmd
}
