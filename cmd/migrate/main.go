package main

import (
	"deck_srv/internal/config"
	"deck_srv/internal/database"
	"deck_srv/internal/di"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}
	logger := di.NewLogger(cfg)

	db, err := database.NewDatabaseFromConfig(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	if err := database.AutoMigrate(db, logger); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	logger.WithField("driver", cfg.DB.Driver).Info("Migrations completed successfully")
}
