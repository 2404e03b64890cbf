package di

import (
	"time"

	"deck_srv/internal/config"
	"deck_srv/internal/database"
	"deck_srv/internal/server"
	"deck_srv/internal/service"
	"deck_srv/internal/statusreport"
	"deck_srv/internal/storage"

	"github.com/sirupsen/logrus"
	"go.uber.org/fx"
)

// Module собирает зависимости сервиса презентаций
var Module = fx.Module("deck",
	fx.Provide(
		config.Load,
		NewLogger,
		database.NewDatabaseFromConfig,
		storage.NewStorageFromConfig,
		NewBuilder,
		service.SettingsFromConfig,
		service.NewDeckServiceFromDB,
		server.NewServer,
		server.NewHTTPServer,
	),
	fx.Invoke(database.AutoMigrate),
)

// NewLogger создает и настраивает логгер на основе конфигурации
func NewLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
		logger.WithError(err).Warn("Неверный уровень логирования, используется info")
	}
	logger.SetLevel(level)

	switch cfg.Logging.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	return logger
}

// NewBuilder создает построитель презентаций с брендом из конфигурации
func NewBuilder(cfg config.Config, logger *logrus.Logger) (*statusreport.Builder, error) {
	brand, err := statusreport.NewBrand(cfg.Deck.Brand, cfg.Deck.FilePrefix, cfg.Deck.Accent)
	if err != nil {
		return nil, err
	}
	return statusreport.NewBuilder(brand, logger), nil
}
