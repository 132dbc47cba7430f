package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chrisdamba/foodstore/internal/api"
	"github.com/chrisdamba/foodstore/internal/events"
	"github.com/chrisdamba/foodstore/internal/storefront"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the storefront HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		pool, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		out, err := events.NewOutputDestination(ctx, cfg, cmd.OutOrStdout(), logger)
		if err != nil {
			return err
		}
		publisher := events.NewPublisher(out, events.TopicsFrom(cfg.Events), logger)
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error("failed to close event output", zap.Error(err))
			}
		}()

		opts, err := schedulingOptions()
		if err != nil {
			return err
		}
		svc := storefront.NewService(postgresRepositories(pool), publisher, logger, storefront.Options{
			Scheduling: opts,
			DaysAhead:  cfg.Scheduling.DaysAhead,
		})

		srv := &http.Server{
			Addr:         cfg.HTTP.Addr,
			Handler:      api.NewRouter(svc, logger),
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("http server listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		timeout := cfg.HTTP.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		logger.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides http.addr)")
	cobra.CheckErr(viper.BindPFlag("http.addr", serveCmd.Flags().Lookup("addr")))
	rootCmd.AddCommand(serveCmd)
}
