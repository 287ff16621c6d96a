package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/MedFlow-Health/operations-service/internal/archive"
	"github.com/MedFlow-Health/operations-service/internal/auth"
	"github.com/MedFlow-Health/operations-service/internal/config"
	"github.com/MedFlow-Health/operations-service/internal/db"
	httpapi "github.com/MedFlow-Health/operations-service/internal/http"
	"github.com/MedFlow-Health/operations-service/internal/logger"
	"github.com/MedFlow-Health/operations-service/internal/messaging"
	"github.com/MedFlow-Health/operations-service/internal/preferences"
	"github.com/MedFlow-Health/operations-service/internal/telemetry"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "api",
		Short: "MedFlow hospital operations service",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(accessCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the operations API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func accessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "access",
		Short: "Print the role/view access matrix",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("permissions")
			perms, err := auth.LoadPermissions(path)
			if err != nil {
				return fmt.Errorf("failed to load permissions: %w", err)
			}
			return printAccess(cmd.OutOrStdout(), perms)
		},
	}
	cmd.Flags().String("permissions", os.Getenv("PERMISSIONS_FILE"), "path to a permissions.yml file")
	return cmd
}

func printAccess(out io.Writer, perms auth.Permissions) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header := []string{"ROLE"}
	for _, v := range auth.AllViews {
		header = append(header, strings.ToUpper(string(v)))
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, role := range auth.Roles {
		row := []string{string(role)}
		for _, v := range auth.AllViews {
			mark := "-"
			if perms.Allows(role, v) {
				mark = "x"
			}
			row = append(row, mark)
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func runServer(cfg *config.Config) error {
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.WithFields(logrus.Fields{"port": cfg.Port, "env": cfg.Env}).Info("operations-service starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := httpapi.Deps{
		AssistantDelay:     cfg.AssistantDelay,
		SimulationEnabled:  cfg.SimulationEnabled,
		SimulationInterval: cfg.SimulationInterval,
		Log:                log,
	}

	if cfg.OTelEnabled {
		provider, err := telemetry.InitProvider(ctx, telemetry.Config{
			ServiceName:     cfg.OTelServiceName,
			ServiceVersion:  cfg.ServiceVersion,
			Environment:     cfg.Env,
			OTLPEndpoint:    cfg.OTelEndpoint,
			Sampler:         cfg.OTelSampler,
			SampleRatio:     cfg.OTelSampleRatio,
			MetricsInterval: cfg.OTelMetricsInterval,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				log.WithError(err).Error("Failed to shut down telemetry")
			}
		}()

		metrics, err := telemetry.InitMetrics(log)
		if err != nil {
			return fmt.Errorf("failed to initialize metrics: %w", err)
		}
		deps.Metrics = metrics
	}

	perms, err := auth.LoadPermissions(cfg.PermissionsFile)
	if err != nil {
		return fmt.Errorf("failed to load permissions: %w", err)
	}
	deps.Permissions = perms

	directory, err := auth.NewDirectory(auth.DefaultCredentials(), cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to build credential table: %w", err)
	}
	deps.Directory = directory
	deps.Verifier = auth.NewVerifier(auth.NewConfig(cfg.SessionSecret, cfg.SessionTTL), nil)

	if cfg.DatabaseEnabled() {
		database, err := db.Connect(db.Settings{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			Name:     cfg.DBName,
		}, log)
		if err != nil {
			return err
		}
		defer database.Close()

		store := preferences.NewPostgresStore(database)
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		deps.Preferences = store
	} else {
		log.Info("No database configured, preferences are kept in memory")
	}

	if cfg.RabbitMQURL != "" {
		publisher, err := messaging.NewPublisher(cfg.RabbitMQURL, log)
		if err != nil {
			// Events are best effort; the dashboard works without a broker.
			log.WithError(err).Warn("RabbitMQ unavailable, domain events disabled")
		} else {
			defer publisher.Close()
			deps.Publisher = publisher
		}
	}

	if cfg.ArchiveBucket != "" {
		archiver, err := archive.NewS3Archiver(ctx, cfg.ArchiveBucket, cfg.AWSRegion, log)
		if err != nil {
			return fmt.Errorf("failed to initialize archive: %w", err)
		}
		deps.Archiver = archiver
	}

	if cfg.SMTPEnabled() {
		deps.Messenger = messaging.NewSMTPMessenger(messaging.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, log)
	}

	app := httpapi.SetupRouter(ctx, deps)
	defer app.Shutdown()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.CORSMiddleware(cfg.AllowedOrigins)(app.Router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down operations-service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("operations-service stopped")
	return nil
}
