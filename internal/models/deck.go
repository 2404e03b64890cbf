package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DeckStatus is the lifecycle state of a generated deck.
type DeckStatus string

const (
	DeckStatusPending   DeckStatus = "pending"
	DeckStatusCompleted DeckStatus = "completed"
	DeckStatusFailed    DeckStatus = "failed"
)

// Valid reports whether s is a known status.
func (s DeckStatus) Valid() bool {
	switch s {
	case DeckStatusPending, DeckStatusCompleted, DeckStatusFailed:
		return true
	}
	return false
}

// CanTransitionTo reports whether a deck may move from s to next.
// Only pending decks change state.
func (s DeckStatus) CanTransitionTo(next DeckStatus) bool {
	return s == DeckStatusPending && (next == DeckStatusCompleted || next == DeckStatusFailed)
}

// Deck represents a generated status report deck
type Deck struct {
	ID            uint           `json:"id" gorm:"primarykey"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
	RequestID     string         `json:"request_id" gorm:"size:36;uniqueIndex;not null"`
	ProjectName   string         `json:"project_name" gorm:"size:255;not null;index"`
	PeriodLabel   string         `json:"period_label" gorm:"size:255"`
	Status        DeckStatus     `json:"status" gorm:"size:50;not null;default:'pending'"`
	FilePath      string         `json:"file_path,omitempty" gorm:"size:1024"`
	FileKey       string         `json:"file_key,omitempty" gorm:"size:255"`
	WorkbookKey   string         `json:"workbook_key,omitempty" gorm:"size:255"`
	SlidesCreated int            `json:"slides_created"`
	Error         string         `json:"error,omitempty" gorm:"size:1000"`
	Request       JSON           `json:"request,omitempty"`
	GeneratedAt   *time.Time     `json:"generated_at,omitempty"`
}

// JSON is a custom type for handling JSON columns
type JSON map[string]interface{}

// Value implements the driver.Valuer interface for JSON
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for JSON
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSON", value)
	}

	return json.Unmarshal(bytes, j)
}

// GormDataType keeps the column portable between postgres and sqlite.
func (JSON) GormDataType() string {
	return "text"
}

// ToJSON converts any JSON-encodable value into a JSON map.
func ToJSON(v any) (JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var j JSON
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, err
	}
	return j, nil
}

// TableName specifies the table name for the Deck model
func (Deck) TableName() string {
	return "decks"
}

// IsCompleted returns true if the deck was written and stored
func (d *Deck) IsCompleted() bool {
	return d.Status == DeckStatusCompleted
}

// IsPending returns true if the deck is still being built
func (d *Deck) IsPending() bool {
	return d.Status == DeckStatusPending
}

// IsFailed returns true if the build failed
func (d *Deck) IsFailed() bool {
	return d.Status == DeckStatusFailed
}
