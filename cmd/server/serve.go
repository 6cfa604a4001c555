package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tgo/embedhub/internal/config"
	"github.com/tgo/embedhub/internal/handler"
	"github.com/tgo/embedhub/internal/pkg/db"
	"github.com/tgo/embedhub/internal/pkg/logging"
	"github.com/tgo/embedhub/internal/pkg/redis"
)

// bootstrap loads configuration, sets up logging and opens a migrated database.
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logging.Setup(cfg.LogLevel, cfg.IsDevelopment())

	gormDB, err := db.NewGormDB(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		return nil, nil, err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return nil, nil, err
	}
	return cfg, gormDB, nil
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := bootstrap()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			var redisClient *redis.Client
			if cfg.RedisURL != "" {
				redisClient, err = redis.NewClient(cfg.RedisURL)
				if err != nil {
					logrus.WithError(err).Warn("Failed to connect to Redis, event stream disabled")
					redisClient = nil
				} else {
					defer redisClient.Close()
				}
			}

			router := handler.SetupRouter(cfg, gormDB, redisClient)

			srv := &http.Server{
				Addr:    ":" + cfg.Port,
				Handler: router,
			}

			errCh := make(chan error, 1)
			go func() {
				logrus.Infof("Embed server starting on port %s", cfg.Port)
				logrus.Infof("Environment: %s", cfg.Environment)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case <-quit:
			}

			logrus.Info("Shutting down server...")

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				return err
			}
			logrus.Info("Server exited")
			return nil
		},
	}
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := bootstrap(); err != nil {
				return err
			}
			logrus.Info("Database schema is up to date")
			return nil
		},
	}
}
