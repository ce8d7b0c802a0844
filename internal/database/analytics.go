package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stride/internal/models"
)

// RecordFilterHit increments the hit count of a filter input on a
// collection, creating the row on first use.
func (d *Database) RecordFilterHit(ctx context.Context, collectionHandle, filterInput string, at time.Time) error {
	stat := models.FilterStat{
		CollectionHandle: collectionHandle,
		FilterInput:      filterInput,
		Hits:             1,
		LastSeenAt:       at,
	}
	err := d.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "collection_handle"}, {Name: "filter_input"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"hits":         gorm.Expr("filter_stats.hits + 1"),
			"last_seen_at": at,
			"updated_at":   at,
		}),
	}).Create(&stat).Error
	if err != nil {
		return fmt.Errorf("failed to record filter hit: %w", err)
	}
	return nil
}

// RecordSearch increments the hit count of a search term and stores the
// latest result count.
func (d *Database) RecordSearch(ctx context.Context, term string, resultCount int, at time.Time) error {
	row := models.SearchTerm{
		Term:            term,
		Hits:            1,
		LastResultCount: resultCount,
		LastSeenAt:      at,
	}
	err := d.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "term"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"hits":              gorm.Expr("search_terms.hits + 1"),
			"last_result_count": resultCount,
			"last_seen_at":      at,
			"updated_at":        at,
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}
	return nil
}

// PopularFilters returns the most applied filter inputs for a collection.
func (d *Database) PopularFilters(ctx context.Context, collectionHandle string, limit int) ([]models.FilterStat, error) {
	if limit <= 0 {
		limit = 10
	}
	var stats []models.FilterStat
	err := d.DB.WithContext(ctx).
		Where("collection_handle = ?", collectionHandle).
		Order("hits DESC").
		Order("last_seen_at DESC").
		Limit(limit).
		Find(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load popular filters: %w", err)
	}
	return stats, nil
}

// TopSearchTerms returns the most searched terms.
func (d *Database) TopSearchTerms(ctx context.Context, limit int) ([]models.SearchTerm, error) {
	if limit <= 0 {
		limit = 10
	}
	var terms []models.SearchTerm
	if err := d.DB.WithContext(ctx).Order("hits DESC").Order("term").Limit(limit).Find(&terms).Error; err != nil {
		return nil, fmt.Errorf("failed to load search terms: %w", err)
	}
	return terms, nil
}
