package main

import (
	"github.com/spf13/cobra"

	"recruitbot/internal/config"
	"recruitbot/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadStorage()
		if err != nil {
			return err
		}
		logger.Init(cfg.LogLevel)
		if err := migrateStorage(cfg); err != nil {
			return err
		}
		logger.For("Main").WithField("driver", cfg.StorageDriver).Info("✅ migrations complete")
		return nil
	},
}
