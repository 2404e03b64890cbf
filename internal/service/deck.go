package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"deck_srv/internal/config"
	"deck_srv/internal/models"
	"deck_srv/internal/pptx"
	"deck_srv/internal/statusreport"
	"deck_srv/internal/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var (
	// ErrDeckNotFound презентация с таким ID отсутствует
	ErrDeckNotFound = errors.New("deck not found")
	// ErrDeckNotReady файл презентации еще не готов или не создавался
	ErrDeckNotReady = errors.New("deck file not available")
	// ErrInvalidOutputPath output_path указывает за пределы output_dir
	ErrInvalidOutputPath = errors.New("output_path must be a plain file name")
)

var pathSeparators = strings.NewReplacer("/", "_", `\`, "_")

// DeckService интерфейс для работы с презентациями
type DeckService interface {
	Generate(ctx context.Context, req statusreport.ReportRequest) (*models.Deck, statusreport.Result)
	GetDeck(ctx context.Context, id uint) (*models.Deck, error)
	ListDecks(ctx context.Context, params ListDeckParams) (*DeckList, error)
	DeleteDeck(ctx context.Context, id uint) error
	GetDeckFile(ctx context.Context, id uint, workbook bool) (io.ReadCloser, *DeckFile, error)
	GetDeckURL(ctx context.Context, id uint, workbook bool) (*DeckLink, error)
}

// ListDeckParams параметры для получения списка презентаций
type ListDeckParams struct {
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Status   *models.DeckStatus `json:"status,omitempty"`
	Search   string             `json:"search,omitempty"`
}

// DeckList результат получения списка презентаций с пагинацией
type DeckList struct {
	Decks      []models.Deck `json:"decks"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}

// DeckFile описывает отдаваемый файл
type DeckFile struct {
	Name        string
	ContentType string
	Size        int64
}

// DeckLink ссылка на скачивание файла из хранилища
type DeckLink struct {
	URL       string    `json:"url"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Settings настройки сервиса презентаций
type Settings struct {
	OutputDir      string
	Workbook       bool
	LinkExpiration time.Duration
}

// SettingsFromConfig берет настройки из разделов deck и storage
func SettingsFromConfig(cfg config.Config) Settings {
	return Settings{
		OutputDir:      cfg.Deck.OutputDir,
		Workbook:       cfg.Deck.Workbook,
		LinkExpiration: cfg.Storage.PresignExpiration,
	}
}

// DeckServiceImpl реализация сервиса презентаций
type DeckServiceImpl struct {
	repository DeckRepository
	builder    *statusreport.Builder
	files      DeckFileStorage
	workbooks  WorkbookGenerator
	settings   Settings
	logger     *logrus.Logger
}

// NewDeckService создает новый сервис презентаций
func NewDeckService(
	repository DeckRepository,
	builder *statusreport.Builder,
	files DeckFileStorage,
	workbooks WorkbookGenerator,
	settings Settings,
	logger *logrus.Logger,
) DeckService {
	return &DeckServiceImpl{
		repository: repository,
		builder:    builder,
		files:      files,
		workbooks:  workbooks,
		settings:   settings,
		logger:     logger,
	}
}

// NewDeckServiceFromDB создает полностью настроенный сервис презентаций
func NewDeckServiceFromDB(db *gorm.DB, store storage.Storage, builder *statusreport.Builder, settings Settings, logger *logrus.Logger) DeckService {
	return NewDeckService(
		NewGormDeckRepository(db, logger),
		builder,
		NewDeckFileStorage(store, logger),
		NewExcelWorkbookGenerator(builder.Brand(), logger),
		settings,
		logger,
	)
}

// ValidateOutputPath проверяет output_path клиента: допускается только имя
// файла, без каталогов
func ValidateOutputPath(p string) error {
	if p == "" {
		return nil
	}
	clean := filepath.Clean(p)
	if filepath.IsAbs(p) || clean != filepath.Base(clean) || clean == "." || clean == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidOutputPath, p)
	}
	return nil
}

// outputName возвращает имя файла презентации
func (s *DeckServiceImpl) outputName(req statusreport.ReportRequest) (string, error) {
	if req.OutputPath == "" {
		return s.builder.DefaultOutputPath(pathSeparators.Replace(req.ProjectName)), nil
	}
	if err := ValidateOutputPath(req.OutputPath); err != nil {
		return "", err
	}
	return filepath.Clean(req.OutputPath), nil
}

// stage создает временный каталог сборки внутри output_dir
func (s *DeckServiceImpl) stage() (string, error) {
	dir := s.settings.OutputDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ошибка создания каталога %s: %w", dir, err)
	}
	stage, err := os.MkdirTemp(dir, "deck-*")
	if err != nil {
		return "", fmt.Errorf("ошибка создания каталога сборки: %w", err)
	}
	return stage, nil
}

// Generate строит презентацию, сохраняет запись и публикует файлы.
// Локальная копия удаляется после публикации, в результате возвращается
// ключ файла в хранилище.
func (s *DeckServiceImpl) Generate(ctx context.Context, req statusreport.ReportRequest) (*models.Deck, statusreport.Result) {
	logger := s.logger.WithFields(logrus.Fields{
		"project": req.ProjectName,
		"period":  req.PeriodLabel,
	})

	name, err := s.outputName(req)
	if err != nil {
		logger.WithError(err).Warn("Недопустимый путь презентации")
		return nil, statusreport.Failed(err)
	}
	req.OutputPath = name

	payload, err := models.ToJSON(req)
	if err != nil {
		return nil, statusreport.Failed(fmt.Errorf("ошибка сериализации запроса: %w", err))
	}

	stage, err := s.stage()
	if err != nil {
		logger.WithError(err).Error("Ошибка подготовки каталога сборки")
		return nil, statusreport.Failed(err)
	}
	defer func() {
		if err := os.RemoveAll(stage); err != nil {
			logger.WithError(err).WithField("stage", stage).Warn("Ошибка удаления каталога сборки")
		}
	}()

	deck := &models.Deck{
		RequestID:   uuid.NewString(),
		ProjectName: req.ProjectName,
		PeriodLabel: req.PeriodLabel,
		Status:      models.DeckStatusPending,
		FilePath:    name,
		Request:     payload,
	}
	if err := s.repository.Create(ctx, deck); err != nil {
		logger.WithError(err).Error("Ошибка сохранения презентации в БД")
		return nil, statusreport.Failed(fmt.Errorf("ошибка создания записи: %w", err))
	}
	logger = logger.WithFields(logrus.Fields{
		"deck_id":    deck.ID,
		"request_id": deck.RequestID,
	})

	req.OutputPath = filepath.Join(stage, name)
	res := s.builder.Build(req)
	if !res.Success {
		return s.fail(ctx, logger, deck, res)
	}

	fileKey := s.files.DeckKey(deck)
	if err := s.files.Publish(ctx, fileKey, res.FilePath); err != nil {
		logger.WithError(err).WithField("file_key", fileKey).Error("Ошибка сохранения файла презентации")
		return s.fail(ctx, logger, deck, statusreport.Failed(err))
	}
	res.FilePath = fileKey

	var workbookKey string
	if s.settings.Workbook && s.workbooks != nil {
		workbookKey = s.publishWorkbook(ctx, logger, deck, req)
	}

	err = s.repository.UpdateStatus(ctx, deck.ID, models.DeckStatusCompleted, StatusUpdate{
		FilePath:      name,
		FileKey:       fileKey,
		WorkbookKey:   workbookKey,
		SlidesCreated: res.SlidesCreated,
	})
	if err != nil {
		logger.WithError(err).Error("Ошибка обновления статуса на completed")
		return deck, statusreport.Failed(err)
	}

	logger.WithField("file_key", fileKey).Info("Презентация создана")
	return s.reload(ctx, deck), res
}

// publishWorkbook сохраняет книгу Excel. Ошибки не прерывают генерацию.
func (s *DeckServiceImpl) publishWorkbook(ctx context.Context, logger *logrus.Entry, deck *models.Deck, req statusreport.ReportRequest) string {
	data, err := s.workbooks.Generate(ctx, req)
	if err != nil {
		logger.WithError(err).Warn("Книга Excel не создана")
		return ""
	}
	key := s.files.WorkbookKey(deck, s.workbooks.GetFileExtension())
	if err := s.files.Save(ctx, key, data); err != nil {
		logger.WithError(err).WithField("file_key", key).Warn("Книга Excel не сохранена")
		return ""
	}
	return key
}

func (s *DeckServiceImpl) fail(ctx context.Context, logger *logrus.Entry, deck *models.Deck, res statusreport.Result) (*models.Deck, statusreport.Result) {
	logger.WithField("error", res.Error).Error("Ошибка генерации презентации")
	if err := s.repository.UpdateStatus(ctx, deck.ID, models.DeckStatusFailed, StatusUpdate{Error: res.Error}); err != nil {
		logger.WithError(err).Error("Ошибка обновления статуса на failed")
		return deck, res
	}
	return s.reload(ctx, deck), res
}

// reload перечитывает запись после обновления статуса
func (s *DeckServiceImpl) reload(ctx context.Context, deck *models.Deck) *models.Deck {
	fresh, err := s.repository.GetByID(ctx, deck.ID)
	if err != nil {
		s.logger.WithError(err).WithField("deck_id", deck.ID).Warn("Ошибка перечитывания презентации")
		return deck
	}
	return fresh
}

// GetDeck получает презентацию по ID
func (s *DeckServiceImpl) GetDeck(ctx context.Context, id uint) (*models.Deck, error) {
	deck, err := s.repository.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrDeckNotFound) {
			s.logger.WithError(err).WithField("deck_id", id).Error("Ошибка получения презентации")
		}
		return nil, fmt.Errorf("ошибка получения презентации: %w", err)
	}
	return deck, nil
}

// ListDecks получает список презентаций с пагинацией
func (s *DeckServiceImpl) ListDecks(ctx context.Context, params ListDeckParams) (*DeckList, error) {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = defaultPageSize
	}
	if params.PageSize > maxPageSize {
		params.PageSize = maxPageSize
	}

	decks, total, err := s.repository.List(ctx, params)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения списка презентаций")
		return nil, fmt.Errorf("ошибка получения списка презентаций: %w", err)
	}
	if decks == nil {
		decks = []models.Deck{}
	}

	return &DeckList{
		Decks:      decks,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: int((total + int64(params.PageSize) - 1) / int64(params.PageSize)),
	}, nil
}

// DeleteDeck удаляет презентацию и ее файлы
func (s *DeckServiceImpl) DeleteDeck(ctx context.Context, id uint) error {
	logger := s.logger.WithField("deck_id", id)

	deck, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("ошибка получения презентации: %w", err)
	}

	// Ошибки удаления файлов не прерывают удаление записи
	for _, key := range []string{deck.FileKey, deck.WorkbookKey} {
		if key == "" {
			continue
		}
		if err := s.files.Delete(ctx, key); err != nil {
			logger.WithError(err).WithField("file_key", key).Error("Ошибка удаления файла презентации")
		}
	}

	if err := s.repository.Delete(ctx, id); err != nil {
		logger.WithError(err).Error("Ошибка удаления презентации из БД")
		return fmt.Errorf("ошибка удаления презентации: %w", err)
	}

	logger.WithField("project", deck.ProjectName).Info("Презентация удалена")
	return nil
}

// deckFileKey находит ключ готового файла презентации или книги Excel
func (s *DeckServiceImpl) deckFileKey(ctx context.Context, id uint, workbook bool) (string, string, error) {
	deck, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return "", "", fmt.Errorf("ошибка получения презентации: %w", err)
	}

	switch {
	case deck.IsPending():
		return "", "", fmt.Errorf("%w: презентация еще создается", ErrDeckNotReady)
	case deck.IsFailed():
		return "", "", fmt.Errorf("%w: ошибка генерации: %s", ErrDeckNotReady, deck.Error)
	case !deck.IsCompleted():
		return "", "", fmt.Errorf("%w: неизвестный статус %q", ErrDeckNotReady, deck.Status)
	}

	key, contentType := deck.FileKey, pptx.MimeType
	if workbook {
		key = deck.WorkbookKey
		contentType = storage.ContentType(key)
		if s.workbooks != nil {
			contentType = s.workbooks.GetMimeType()
		}
	}
	if key == "" {
		return "", "", fmt.Errorf("%w: файл не сохранен", ErrDeckNotReady)
	}
	return key, contentType, nil
}

// GetDeckFile возвращает файл презентации или книги Excel
func (s *DeckServiceImpl) GetDeckFile(ctx context.Context, id uint, workbook bool) (io.ReadCloser, *DeckFile, error) {
	key, contentType, err := s.deckFileKey(ctx, id, workbook)
	if err != nil {
		return nil, nil, err
	}
	logger := s.logger.WithField("file_key", key)

	file := &DeckFile{Name: filepath.Base(key), ContentType: contentType}
	// Размер нужен только для Content-Length, его отсутствие не ошибка
	if meta, err := s.files.Stat(ctx, key); err == nil {
		file.Size = meta.Size
	} else if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: файл отсутствует в хранилище", ErrDeckNotReady)
	} else {
		logger.WithError(err).Warn("Ошибка получения метаданных файла")
	}

	reader, err := s.files.Get(ctx, key)
	if err != nil {
		logger.WithError(err).Error("Ошибка получения файла из хранилища")
		return nil, nil, fmt.Errorf("ошибка получения файла: %w", err)
	}

	return reader, file, nil
}

// GetDeckURL возвращает ссылку на скачивание файла напрямую из хранилища
func (s *DeckServiceImpl) GetDeckURL(ctx context.Context, id uint, workbook bool) (*DeckLink, error) {
	key, _, err := s.deckFileKey(ctx, id, workbook)
	if err != nil {
		return nil, err
	}
	logger := s.logger.WithField("file_key", key)

	exists, err := s.files.Exists(ctx, key)
	if err != nil {
		logger.WithError(err).Error("Ошибка проверки файла в хранилище")
		return nil, fmt.Errorf("ошибка проверки файла: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: файл отсутствует в хранилище", ErrDeckNotReady)
	}

	expiration := s.linkExpiration()
	url, err := s.files.URL(ctx, key, expiration)
	if err != nil {
		logger.WithError(err).Error("Ошибка генерации ссылки на файл")
		return nil, fmt.Errorf("ошибка генерации ссылки: %w", err)
	}

	return &DeckLink{
		URL:       url,
		Name:      filepath.Base(key),
		ExpiresAt: time.Now().Add(expiration).UTC(),
	}, nil
}

func (s *DeckServiceImpl) linkExpiration() time.Duration {
	if s.settings.LinkExpiration > 0 {
		return s.settings.LinkExpiration
	}
	return storage.DefaultPresignExpiration
}
