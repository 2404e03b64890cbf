package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"deck_srv/internal/models"
	"deck_srv/internal/storage"

	"github.com/sirupsen/logrus"
)

// DeckFileStorage интерфейс для работы с файлами презентаций
type DeckFileStorage interface {
	Publish(ctx context.Context, key, localPath string) error
	Save(ctx context.Context, key string, data io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Stat(ctx context.Context, key string) (*storage.FileMetadata, error)
	URL(ctx context.Context, key string, expiration time.Duration) (string, error)
	DeckKey(deck *models.Deck) string
	WorkbookKey(deck *models.Deck, ext string) string
}

// DeckFileStorageImpl раскладывает файлы по ключам decks/<id>/
type DeckFileStorageImpl struct {
	storage storage.Storage
	logger  *logrus.Logger
}

// NewDeckFileStorage создает новое хранилище файлов презентаций
func NewDeckFileStorage(storage storage.Storage, logger *logrus.Logger) DeckFileStorage {
	return &DeckFileStorageImpl{
		storage: storage,
		logger:  logger,
	}
}

// Publish копирует записанный на диск файл в хранилище
func (s *DeckFileStorageImpl) Publish(ctx context.Context, key, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("ошибка открытия файла презентации: %w", err)
	}
	defer f.Close()

	return s.storage.Save(ctx, key, f)
}

// Save сохраняет данные в хранилище
func (s *DeckFileStorageImpl) Save(ctx context.Context, key string, data io.Reader) error {
	return s.storage.Save(ctx, key, data)
}

// Get получает файл из хранилища
func (s *DeckFileStorageImpl) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.storage.Get(ctx, key)
}

// Delete удаляет файл из хранилища
func (s *DeckFileStorageImpl) Delete(ctx context.Context, key string) error {
	return s.storage.Delete(ctx, key)
}

// Exists проверяет наличие файла в хранилище
func (s *DeckFileStorageImpl) Exists(ctx context.Context, key string) (bool, error) {
	return s.storage.Exists(ctx, key)
}

// Stat возвращает метаданные файла
func (s *DeckFileStorageImpl) Stat(ctx context.Context, key string) (*storage.FileMetadata, error) {
	return s.storage.GetMetadata(ctx, key)
}

// URL возвращает ссылку на скачивание. Нулевой срок означает срок хранилища
// по умолчанию.
func (s *DeckFileStorageImpl) URL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return s.storage.GetPresignedURL(ctx, key, expiration)
}

// DeckKey ключ файла презентации: decks/<id>/<имя файла>
func (s *DeckFileStorageImpl) DeckKey(deck *models.Deck) string {
	return path.Join("decks", fmt.Sprint(deck.ID), filepath.Base(deck.FilePath))
}

// WorkbookKey ключ книги Excel рядом с презентацией
func (s *DeckFileStorageImpl) WorkbookKey(deck *models.Deck, ext string) string {
	base := filepath.Base(deck.FilePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return path.Join("decks", fmt.Sprint(deck.ID), stem+"."+ext)
}
