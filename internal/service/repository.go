package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"deck_srv/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DeckRepository интерфейс для работы с базой данных презентаций
type DeckRepository interface {
	Create(ctx context.Context, deck *models.Deck) error
	GetByID(ctx context.Context, id uint) (*models.Deck, error)
	List(ctx context.Context, params ListDeckParams) ([]models.Deck, int64, error)
	Delete(ctx context.Context, id uint) error
	UpdateStatus(ctx context.Context, id uint, status models.DeckStatus, update StatusUpdate) error
}

// StatusUpdate поля, записываемые вместе со сменой статуса
type StatusUpdate struct {
	FilePath      string
	FileKey       string
	WorkbookKey   string
	SlidesCreated int
	Error         string
}

// GormDeckRepository реализация репозитория презентаций для GORM
type GormDeckRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewGormDeckRepository создает новый GORM репозиторий презентаций
func NewGormDeckRepository(db *gorm.DB, logger *logrus.Logger) DeckRepository {
	return &GormDeckRepository{
		db:     db,
		logger: logger,
	}
}

// Create создает новую запись в БД
func (r *GormDeckRepository) Create(ctx context.Context, deck *models.Deck) error {
	if deck.Status == "" {
		deck.Status = models.DeckStatusPending
	}
	return r.db.WithContext(ctx).Create(deck).Error
}

// GetByID получает презентацию по ID
func (r *GormDeckRepository) GetByID(ctx context.Context, id uint) (*models.Deck, error) {
	var deck models.Deck
	err := r.db.WithContext(ctx).First(&deck, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrDeckNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &deck, nil
}

// List получает список презентаций с фильтрацией и пагинацией
func (r *GormDeckRepository) List(ctx context.Context, params ListDeckParams) ([]models.Deck, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Deck{})

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	// LOWER + LIKE работает одинаково в postgres и sqlite
	if params.Search != "" {
		pattern := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(project_name) LIKE ? OR LOWER(period_label) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (params.Page - 1) * params.PageSize
	var decks []models.Deck
	err := query.Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(params.PageSize).
		Find(&decks).Error

	return decks, total, err
}

// Delete удаляет презентацию
func (r *GormDeckRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Deck{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrDeckNotFound, id)
	}
	return nil
}

// UpdateStatus переводит презентацию из pending в конечный статус
func (r *GormDeckRepository) UpdateStatus(ctx context.Context, id uint, status models.DeckStatus, update StatusUpdate) error {
	if !models.DeckStatusPending.CanTransitionTo(status) {
		return fmt.Errorf("недопустимый статус: %s", status)
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": now,
		"error":      update.Error,
	}

	if status == models.DeckStatusCompleted {
		updates["file_path"] = update.FilePath
		updates["file_key"] = update.FileKey
		updates["workbook_key"] = update.WorkbookKey
		updates["slides_created"] = update.SlidesCreated
		updates["generated_at"] = &now
	}

	res := r.db.WithContext(ctx).Model(&models.Deck{}).
		Where("id = ? AND status = ?", id, models.DeckStatusPending).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("презентация %d не найдена или уже не в статусе pending", id)
	}
	return nil
}
