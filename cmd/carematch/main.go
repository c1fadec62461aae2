package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"carematch/internal/api"
	"carematch/internal/app/config"
	"carematch/internal/app/repository"
	"carematch/internal/pkg"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "carematch",
	Short:         "Care request matching service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		server, err := api.NewServer(ctx, cfg)
		if err != nil {
			return err
		}
		defer server.Close(context.Background())

		if cfg.Database.Driver == repository.DriverSQLite {
			if err := server.Repository.Migrate(); err != nil {
				return err
			}
		}

		return pkg.NewApp(cfg, server).RunApp(ctx)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the users, requests and orders tables",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		repo, err := repository.Open(cfg.Database.Driver, cfg.Database.ConnString())
		if err != nil {
			return err
		}
		defer repo.Close()

		if err := repo.Migrate(); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logrus.Info("Database migration completed successfully")
		return nil
	},
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.FromFile(configPath)
	} else {
		cfg, err = config.NewConfig()
	}
	if err != nil {
		return nil, err
	}
	cfg.Log.ConfigureLogging()
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a TOML config file (default: config/config.toml)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
