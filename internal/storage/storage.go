package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"deck_srv/internal/config"

	"github.com/sirupsen/logrus"
)

const (
	// Типы хранилищ
	StorageTypeLocal = "local"
	StorageTypeS3    = "s3"

	// Настройки retry
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second

	DefaultPresignExpiration = time.Hour

	maxKeyLength = 1024
)

// ErrNotFound возвращается, если файла с таким ключом нет.
var ErrNotFound = errors.New("file not found")

// Storage интерфейс для работы с файловыми хранилищами
type Storage interface {
	Save(ctx context.Context, key string, reader io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)

	GetMetadata(ctx context.Context, key string) (*FileMetadata, error)
	GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)

	ValidateKey(key string) error
}

// FileMetadata метаданные файла
type FileMetadata struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag,omitempty"`
}

// Известные типы содержимого по расширению ключа.
var contentTypes = map[string]string{
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".json": "application/json",
}

// ContentType определяет MIME-тип по расширению ключа.
func ContentType(key string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(key))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// validateKey общая проверка ключа для всех хранилищ
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("ключ файла не может быть пустым")
	}
	if len(key) > maxKeyLength {
		return fmt.Errorf("ключ файла слишком длинный: %d символов (максимум %d)", len(key), maxKeyLength)
	}
	if strings.HasPrefix(key, "/") {
		return fmt.Errorf("ключ файла не может начинаться с '/'")
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return fmt.Errorf("ключ файла не может содержать '..'")
		}
	}
	return nil
}

// S3Config конфигурация S3 хранилища
type S3Config struct {
	Region            string
	Bucket            string
	Endpoint          string
	AccessKey         string
	SecretKey         string
	ForcePathStyle    bool
	PresignExpiration time.Duration
}

// LocalConfig конфигурация локального хранилища
type LocalConfig struct {
	BasePath   string
	CreateDirs bool
}

// StorageBuilder строитель для конфигурации хранилища
type StorageBuilder struct {
	config     config.Config
	logger     *logrus.Logger
	maxRetries int
	retryDelay time.Duration
}

// NewStorageBuilder создает новый строитель хранилища
func NewStorageBuilder(cfg config.Config, logger *logrus.Logger) *StorageBuilder {
	return &StorageBuilder{
		config:     cfg,
		logger:     logger,
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
	}
}

// WithRetry переопределяет параметры повторов
func (b *StorageBuilder) WithRetry(maxRetries int, delay time.Duration) *StorageBuilder {
	b.maxRetries = maxRetries
	b.retryDelay = delay
	return b
}

// Build создает хранилище на основе конфигурации
func (b *StorageBuilder) Build() (Storage, error) {
	var (
		storage Storage
		err     error
	)

	switch b.config.Storage.Type {
	case StorageTypeS3:
		storage, err = NewS3Storage(b.buildS3Config(), b.logger)
		if err != nil {
			return nil, fmt.Errorf("ошибка создания S3 хранилища: %w", err)
		}
	case StorageTypeLocal:
		storage, err = NewLocalStorage(b.buildLocalConfig(), b.logger)
		if err != nil {
			return nil, fmt.Errorf("ошибка создания локального хранилища: %w", err)
		}
	default:
		return nil, fmt.Errorf("неподдерживаемый тип хранилища: %s", b.config.Storage.Type)
	}

	return b.wrapWithMiddleware(storage), nil
}

// buildS3Config создает конфигурацию S3
func (b *StorageBuilder) buildS3Config() S3Config {
	return S3Config{
		Region:            b.config.Storage.S3.Region,
		Bucket:            b.config.Storage.S3.Bucket,
		Endpoint:          b.config.Storage.S3.Endpoint,
		AccessKey:         b.config.Storage.S3.AccessKey,
		SecretKey:         b.config.Storage.S3.SecretKey,
		ForcePathStyle:    b.config.Storage.S3.Endpoint != "",
		PresignExpiration: b.config.Storage.PresignExpiration,
	}
}

// buildLocalConfig создает конфигурацию локального хранилища
func (b *StorageBuilder) buildLocalConfig() LocalConfig {
	return LocalConfig{
		BasePath:   b.config.Storage.BasePath,
		CreateDirs: true,
	}
}

// wrapWithMiddleware оборачивает хранилище в middleware.
// Порядок вызова: validation -> retry -> logging -> хранилище.
func (b *StorageBuilder) wrapWithMiddleware(storage Storage) Storage {
	if b.logger != nil {
		storage = NewLoggingMiddleware(storage, b.logger)
	}
	storage = NewRetryMiddleware(storage, b.maxRetries, b.retryDelay, b.logger)
	storage = NewValidationMiddleware(storage, b.logger)
	return storage
}

// NewStorageFromConfig создает хранилище из конфигурации
func NewStorageFromConfig(cfg config.Config, logger *logrus.Logger) (Storage, error) {
	return NewStorageBuilder(cfg, logger).Build()
}
