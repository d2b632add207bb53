package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/chirp/internal/logging"
	"github.com/harrylevesque/chirp/internal/mockapi"
)

// TODO(server-snapshot): write the in-memory store to a file on shutdown so
// local data survives restarts.

func main() {
	var (
		addr     string
		logLevel string
		users    map[string]string
	)
	cmd := &cobra.Command{
		Use:           "chirp-server",
		Short:         "In-memory chirp backend for local development",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(logging.Options{App: "chirp-server", Level: logLevel})
			if err != nil {
				return err
			}
			defer log.Close()

			backend := mockapi.New(mockapi.WithLogger(log.Logger))
			for key, name := range users {
				id := backend.AddUser(key, name)
				log.Info().Int64("id", id).Str("name", name).Msg("user seeded")
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           backend,
				ReadHeaderTimeout: 10 * time.Second,
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				log.Info().Str("addr", addr).Msg("server running")
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}
			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level")
	cmd.Flags().StringToStringVar(&users, "user", nil, "seed a user as api-key=name (repeatable)")

	if err := cmd.Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
