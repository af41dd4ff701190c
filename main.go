package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/linesmerrill/relief-api/api/handlers"
	"github.com/linesmerrill/relief-api/api/scheduler"
	"github.com/linesmerrill/relief-api/config"
	"github.com/linesmerrill/relief-api/databases"
	"github.com/linesmerrill/relief-api/services"
)

const shutdownTimeout = 15 * time.Second

var rootCmd = &cobra.Command{
	Use:   "relief-api",
	Short: "Disaster relief coordination API",
	Long: `relief-api serves the emergency reporting, volunteer coordination,
incentive and donation endpoints. Without a subcommand it starts the server.`,
	SilenceUsage: true,
	RunE:         serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server and the background jobs",
	RunE:  serve,
}

var ensureIndexesCmd = &cobra.Command{
	Use:   "ensure-indexes",
	Short: "Create the MongoDB indexes the API relies on",
	RunE:  ensureIndexes,
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print the bcrypt hash of a password for seeding users",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := services.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, ensureIndexesCmd, hashPasswordCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(cmd *cobra.Command, args []string) error {
	a := handlers.App{}
	a.Config = *config.New()

	//initialize database and router
	if err := a.Initialize(); err != nil {
		return err
	}

	s := scheduler.NewScheduler(a.Emergencies, databases.NewUserDatabase(a.DB()), a.Mailer, a.Config.ReminderSchedule)
	if err := s.Start(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%v", a.Config.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		zap.S().Infow("relief-api is up and running",
			"port", a.Config.Port,
			"url", a.Config.BaseURL,
		)
		errCh <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
		zap.S().Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.S().Errorw("failed to shut down server", "error", err)
	}
	s.Stop()
	a.Metrics.Close()
	if err := a.Close(shutdownCtx); err != nil {
		zap.S().Errorw("failed to release resources", "error", err)
	}
	_ = zap.S().Sync()
	return serveErr
}

func ensureIndexes(cmd *cobra.Command, args []string) error {
	conf := config.New()
	client, err := databases.NewClient(conf)
	if err != nil {
		return err
	}
	if err := client.Connect(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()
	defer func() { _ = client.Disconnect(context.Background()) }()

	return databases.EnsureIndexes(ctx, databases.NewDatabase(conf, client))
}
