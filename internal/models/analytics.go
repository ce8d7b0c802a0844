package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FilterStat counts how often a filter input was applied on a collection.
type FilterStat struct {
	ID               string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	CollectionHandle string    `json:"collection_handle" gorm:"not null;uniqueIndex:idx_filter_stats_collection_input"`
	FilterInput      string    `json:"filter_input" gorm:"not null;uniqueIndex:idx_filter_stats_collection_input"`
	Hits             int64     `json:"hits" gorm:"not null;default:0"`
	LastSeenAt       time.Time `json:"last_seen_at"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (f *FilterStat) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

// SearchTerm counts searches for a normalized term.
type SearchTerm struct {
	ID              string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Term            string    `json:"term" gorm:"not null;uniqueIndex"`
	Hits            int64     `json:"hits" gorm:"not null;default:0"`
	LastResultCount int       `json:"last_result_count"`
	LastSeenAt      time.Time `json:"last_seen_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (s *SearchTerm) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// All lists every model migrated at startup.
func All() []interface{} {
	return []interface{}{
		&Session{},
		&FilterStat{},
		&SearchTerm{},
	}
}
