package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Server содержит настройки HTTP-сервера.
type Server struct {
	Address string `mapstructure:"address"`
	Debug   bool   `mapstructure:"debug"`
}

// DB содержит параметры подключения к БД.
type DB struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// Storage описывает настройки хранилища файлов.
type Storage struct {
	Type              string        `mapstructure:"type"`
	BasePath          string        `mapstructure:"basepath"`
	PresignExpiration time.Duration `mapstructure:"presign_expiration"`
	S3                S3            `mapstructure:"s3"`
}

// S3 содержит настройки для S3-совместимого хранилища.
type S3 struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// Logging содержит настройки логирования.
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Deck содержит настройки генерации презентаций.
type Deck struct {
	Brand      string `mapstructure:"brand"`
	Accent     string `mapstructure:"accent"`
	FilePrefix string `mapstructure:"file_prefix"`
	OutputDir  string `mapstructure:"output_dir"`
	Workbook   bool   `mapstructure:"workbook"`
}

// Config объединяет все разделы конфигурации.
type Config struct {
	Server  Server  `mapstructure:"server"`
	DB      DB      `mapstructure:"database"`
	Storage Storage `mapstructure:"storage"`
	Logging Logging `mapstructure:"logging"`
	Deck    Deck    `mapstructure:"deck"`
}

// Load читает конфигурацию из файла и окружения с помощью viper.
func Load() (Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/deck-service")

	// Настройка для environment variables
	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()
	bindEnvironmentVariables()

	// Чтение файла конфигурации (опционально)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// setDefaults устанавливает значения по умолчанию
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("server.debug", true)

	// Database defaults
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "decks.db")

	// Storage defaults
	viper.SetDefault("storage.type", "local")
	viper.SetDefault("storage.basepath", "./data")
	viper.SetDefault("storage.presign_expiration", "1h")
	viper.SetDefault("storage.s3.region", "us-east-1")
	viper.SetDefault("storage.s3.bucket", "deck-srv-bucket")
	viper.SetDefault("storage.s3.endpoint", "")
	viper.SetDefault("storage.s3.access_key", "")
	viper.SetDefault("storage.s3.secret_key", "")

	// Logging defaults
	viper.SetDefault("logging.level", "debug")
	viper.SetDefault("logging.format", "text")

	// Deck defaults
	viper.SetDefault("deck.brand", "TAVANT")
	viper.SetDefault("deck.accent", "#F26522")
	viper.SetDefault("deck.file_prefix", "Tavant_WSR")
	viper.SetDefault("deck.output_dir", "./out")
	viper.SetDefault("deck.workbook", true)
}

// bindEnvironmentVariables привязывает переменные окружения к конфигурации
func bindEnvironmentVariables() {
	// Server
	viper.BindEnv("server.address", "APP_SERVER_ADDRESS")
	viper.BindEnv("server.debug", "APP_SERVER_DEBUG")

	// Database
	viper.BindEnv("database.driver", "APP_DATABASE_DRIVER")
	viper.BindEnv("database.dsn", "APP_DATABASE_DSN")

	// Storage
	viper.BindEnv("storage.type", "APP_STORAGE_TYPE")
	viper.BindEnv("storage.basepath", "APP_STORAGE_BASEPATH")
	viper.BindEnv("storage.presign_expiration", "APP_STORAGE_PRESIGN_EXPIRATION")
	viper.BindEnv("storage.s3.region", "APP_STORAGE_S3_REGION")
	viper.BindEnv("storage.s3.bucket", "APP_STORAGE_S3_BUCKET")
	viper.BindEnv("storage.s3.endpoint", "APP_STORAGE_S3_ENDPOINT")
	viper.BindEnv("storage.s3.access_key", "APP_STORAGE_S3_ACCESS_KEY")
	viper.BindEnv("storage.s3.secret_key", "APP_STORAGE_S3_SECRET_KEY")

	// Logging
	viper.BindEnv("logging.level", "APP_LOGGING_LEVEL")
	viper.BindEnv("logging.format", "APP_LOGGING_FORMAT")

	// Deck
	viper.BindEnv("deck.brand", "APP_DECK_BRAND")
	viper.BindEnv("deck.accent", "APP_DECK_ACCENT")
	viper.BindEnv("deck.file_prefix", "APP_DECK_FILE_PREFIX")
	viper.BindEnv("deck.output_dir", "APP_DECK_OUTPUT_DIR")
	viper.BindEnv("deck.workbook", "APP_DECK_WORKBOOK")
}

// validateConfig проверяет корректность конфигурации
func validateConfig(cfg Config) error {
	if cfg.Server.Address == "" {
		return fmt.Errorf("server address cannot be empty")
	}

	// Проверка настроек базы данных
	if cfg.DB.Driver != "postgres" && cfg.DB.Driver != "sqlite" {
		return fmt.Errorf("database driver must be 'postgres' or 'sqlite', got: %s", cfg.DB.Driver)
	}

	if cfg.DB.DSN == "" {
		return fmt.Errorf("database DSN cannot be empty")
	}

	// Проверка настроек хранилища
	if cfg.Storage.Type != "local" && cfg.Storage.Type != "s3" {
		return fmt.Errorf("storage type must be 'local' or 's3', got: %s", cfg.Storage.Type)
	}

	if cfg.Storage.PresignExpiration < 0 {
		return fmt.Errorf("storage presign_expiration cannot be negative")
	}

	if cfg.Storage.Type == "local" && cfg.Storage.BasePath == "" {
		return fmt.Errorf("storage basepath cannot be empty for local storage")
	}

	if cfg.Storage.Type == "s3" {
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("S3 region cannot be empty")
		}
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket cannot be empty")
		}
	}

	// Проверка уровня логирования
	validLogLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	isValidLevel := false
	for _, level := range validLogLevels {
		if strings.ToLower(cfg.Logging.Level) == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		return fmt.Errorf("invalid logging level: %s. Valid levels: %v", cfg.Logging.Level, validLogLevels)
	}

	// Проверка настроек презентаций
	if cfg.Deck.Brand == "" {
		return fmt.Errorf("deck brand cannot be empty")
	}
	if cfg.Deck.OutputDir == "" {
		return fmt.Errorf("deck output_dir cannot be empty")
	}

	return nil
}

// IsDevelopment возвращает true, если приложение запущено в режиме разработки
func (c Config) IsDevelopment() bool {
	return c.Server.Debug
}

// IsProduction возвращает true, если приложение запущено в production режиме
func (c Config) IsProduction() bool {
	return !c.Server.Debug
}

// GetDatabaseURL возвращает URL для подключения к базе данных
func (c Config) GetDatabaseURL() string {
	return c.DB.DSN
}

// String возвращает строковое представление конфигурации (без чувствительных данных)
func (c Config) String() string {
	s3 := c.Storage.S3
	if s3.SecretKey != "" {
		s3.SecretKey = "[HIDDEN]"
	}
	return fmt.Sprintf("Config{Server: %+v, DB: {Driver: %s, DSN: [HIDDEN]}, Storage: {Type: %s, BasePath: %s, S3: %+v}, Logging: %+v, Deck: %+v}",
		c.Server, c.DB.Driver, c.Storage.Type, c.Storage.BasePath, s3, c.Logging, c.Deck)
}
