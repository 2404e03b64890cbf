package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// LocalStorage реализация локального файлового хранилища
type LocalStorage struct {
	basePath   string
	createDirs bool
	logger     *logrus.Logger
}

// NewLocalStorage создает новое локальное хранилище.
// Относительный базовый путь разрешается от текущей директории.
func NewLocalStorage(cfg LocalConfig, logger *logrus.Logger) (*LocalStorage, error) {
	if cfg.BasePath == "" {
		return nil, fmt.Errorf("неверная конфигурация локального хранилища: базовый путь не может быть пустым")
	}

	basePath, err := filepath.Abs(cfg.BasePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка определения базового пути: %w", err)
	}

	if cfg.CreateDirs {
		if err := os.MkdirAll(basePath, dirPermissions); err != nil {
			return nil, fmt.Errorf("ошибка создания базовой директории: %w", err)
		}
	}

	return &LocalStorage{
		basePath:   basePath,
		createDirs: cfg.CreateDirs,
		logger:     logger,
	}, nil
}

// Save атомарно сохраняет файл: запись во временный файл и переименование
func (l *LocalStorage) Save(ctx context.Context, key string, reader io.Reader) error {
	fullPath := l.getFullPath(key)
	dir := filepath.Dir(fullPath)

	if l.createDirs {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return fmt.Errorf("ошибка создания директории: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("ошибка создания файла: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return fmt.Errorf("ошибка записи файла: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ошибка записи файла: %w", err)
	}
	if err := os.Chmod(tmp.Name(), filePermissions); err != nil {
		return fmt.Errorf("ошибка установки прав файла: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return fmt.Errorf("ошибка сохранения файла: %w", err)
	}

	return nil
}

// Get получает файл локально
func (l *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	file, err := os.Open(l.getFullPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	return file, nil
}

// Delete удаляет файл локально
func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	err := os.Remove(l.getFullPath(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления файла: %w", err)
	}
	return nil
}

// Exists проверяет существование файла
func (l *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(l.getFullPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("ошибка проверки существования файла: %w", err)
	}
	return true, nil
}

// GetMetadata получает метаданные файла
func (l *LocalStorage) GetMetadata(ctx context.Context, key string) (*FileMetadata, error) {
	info, err := os.Stat(l.getFullPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("ошибка получения информации о файле: %w", err)
	}

	return &FileMetadata{
		Key:          key,
		Size:         info.Size(),
		LastModified: info.ModTime(),
		ContentType:  ContentType(key),
	}, nil
}

// GetPresignedURL для локального хранилища возвращает file:// URL без срока действия
func (l *LocalStorage) GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(l.getFullPath(key))}
	return u.String(), nil
}

// ValidateKey валидирует ключ файла
func (l *LocalStorage) ValidateKey(key string) error {
	return validateKey(key)
}

// getFullPath возвращает полный путь к файлу
func (l *LocalStorage) getFullPath(key string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(key))
}
