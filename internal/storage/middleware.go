package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// LoggingMiddleware добавляет логирование к операциям хранилища
type LoggingMiddleware struct {
	storage Storage
	logger  *logrus.Logger
}

// NewLoggingMiddleware создает новый logging middleware
func NewLoggingMiddleware(storage Storage, logger *logrus.Logger) Storage {
	return &LoggingMiddleware{
		storage: storage,
		logger:  logger,
	}
}

// observe логирует длительность и результат операции
func (m *LoggingMiddleware) observe(operation, key string, fn func() error) error {
	start := time.Now()
	logger := m.logger.WithFields(logrus.Fields{
		"operation": operation,
		"key":       key,
	})
	logger.Debug("Начало операции с файлом")

	err := fn()

	logger = logger.WithField("duration", time.Since(start))
	switch {
	case err == nil:
		logger.Info("Операция с файлом выполнена")
	case errors.Is(err, ErrNotFound):
		logger.WithError(err).Warn("Файл не найден")
	default:
		logger.WithError(err).Error("Ошибка операции с файлом")
	}
	return err
}

// Save логирует операцию сохранения
func (m *LoggingMiddleware) Save(ctx context.Context, key string, reader io.Reader) error {
	return m.observe("save", key, func() error {
		return m.storage.Save(ctx, key, reader)
	})
}

// Get логирует операцию получения
func (m *LoggingMiddleware) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	var rc io.ReadCloser
	err := m.observe("get", key, func() error {
		var err error
		rc, err = m.storage.Get(ctx, key)
		return err
	})
	return rc, err
}

// Delete логирует операцию удаления
func (m *LoggingMiddleware) Delete(ctx context.Context, key string) error {
	return m.observe("delete", key, func() error {
		return m.storage.Delete(ctx, key)
	})
}

// Остальные методы просто делегируют вызовы
func (m *LoggingMiddleware) Exists(ctx context.Context, key string) (bool, error) {
	return m.storage.Exists(ctx, key)
}

func (m *LoggingMiddleware) GetMetadata(ctx context.Context, key string) (*FileMetadata, error) {
	return m.storage.GetMetadata(ctx, key)
}

func (m *LoggingMiddleware) GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return m.storage.GetPresignedURL(ctx, key, expiration)
}

func (m *LoggingMiddleware) ValidateKey(key string) error {
	return m.storage.ValidateKey(key)
}

// RetryMiddleware добавляет retry логику к операциям хранилища
type RetryMiddleware struct {
	storage    Storage
	maxRetries int
	retryDelay time.Duration
	logger     *logrus.Logger
}

// NewRetryMiddleware создает новый retry middleware
func NewRetryMiddleware(storage Storage, maxRetries int, retryDelay time.Duration, logger *logrus.Logger) Storage {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RetryMiddleware{
		storage:    storage,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		logger:     logger,
	}
}

// Save выполняет операцию сохранения с retry. Тело перечитывается с начала
// на каждой попытке, поэтому непрокручиваемый reader буферизуется.
func (m *RetryMiddleware) Save(ctx context.Context, key string, reader io.Reader) error {
	body, ok := reader.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(reader)
		if err != nil {
			return fmt.Errorf("ошибка чтения данных: %w", err)
		}
		body = bytes.NewReader(data)
	}

	return m.retryOperation(ctx, "save", func() error {
		if _, err := body.Seek(0, io.SeekStart); err != nil {
			return err
		}
		return m.storage.Save(ctx, key, body)
	})
}

// Get выполняет операцию получения с retry
func (m *RetryMiddleware) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	var result io.ReadCloser
	err := m.retryOperation(ctx, "get", func() error {
		var err error
		result, err = m.storage.Get(ctx, key)
		return err
	})
	return result, err
}

// Delete выполняет операцию удаления с retry
func (m *RetryMiddleware) Delete(ctx context.Context, key string) error {
	return m.retryOperation(ctx, "delete", func() error {
		return m.storage.Delete(ctx, key)
	})
}

// retryOperation выполняет операцию с retry логикой
func (m *RetryMiddleware) retryOperation(ctx context.Context, operation string, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !m.shouldRetry(lastErr) {
			break
		}

		if attempt < m.maxRetries {
			m.logger.WithFields(logrus.Fields{
				"operation":   operation,
				"attempt":     attempt + 1,
				"max_retries": m.maxRetries,
			}).WithError(lastErr).Warn("Повтор операции после ошибки")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(m.retryDelay):
			}
		}
	}

	return lastErr
}

// shouldRetry не повторяет отсутствующие файлы и отмененные операции
func (m *RetryMiddleware) shouldRetry(err error) bool {
	return !errors.Is(err, ErrNotFound) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

func (m *RetryMiddleware) Exists(ctx context.Context, key string) (bool, error) {
	return m.storage.Exists(ctx, key)
}

func (m *RetryMiddleware) GetMetadata(ctx context.Context, key string) (*FileMetadata, error) {
	return m.storage.GetMetadata(ctx, key)
}

func (m *RetryMiddleware) GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return m.storage.GetPresignedURL(ctx, key, expiration)
}

func (m *RetryMiddleware) ValidateKey(key string) error {
	return m.storage.ValidateKey(key)
}

// ValidationMiddleware проверяет ключи до обращения к хранилищу
type ValidationMiddleware struct {
	storage Storage
	logger  *logrus.Logger
}

// NewValidationMiddleware создает новый validation middleware
func NewValidationMiddleware(storage Storage, logger *logrus.Logger) Storage {
	return &ValidationMiddleware{
		storage: storage,
		logger:  logger,
	}
}

func (m *ValidationMiddleware) Save(ctx context.Context, key string, reader io.Reader) error {
	if err := m.storage.ValidateKey(key); err != nil {
		return err
	}
	return m.storage.Save(ctx, key, reader)
}

func (m *ValidationMiddleware) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := m.storage.ValidateKey(key); err != nil {
		return nil, err
	}
	return m.storage.Get(ctx, key)
}

func (m *ValidationMiddleware) Delete(ctx context.Context, key string) error {
	if err := m.storage.ValidateKey(key); err != nil {
		return err
	}
	return m.storage.Delete(ctx, key)
}

func (m *ValidationMiddleware) Exists(ctx context.Context, key string) (bool, error) {
	if err := m.storage.ValidateKey(key); err != nil {
		return false, err
	}
	return m.storage.Exists(ctx, key)
}

func (m *ValidationMiddleware) GetMetadata(ctx context.Context, key string) (*FileMetadata, error) {
	if err := m.storage.ValidateKey(key); err != nil {
		return nil, err
	}
	return m.storage.GetMetadata(ctx, key)
}

func (m *ValidationMiddleware) GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	if err := m.storage.ValidateKey(key); err != nil {
		return "", err
	}
	return m.storage.GetPresignedURL(ctx, key, expiration)
}

func (m *ValidationMiddleware) ValidateKey(key string) error {
	return m.storage.ValidateKey(key)
}
