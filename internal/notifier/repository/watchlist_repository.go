package repository

import (
	"context"

	"tickrflow/internal/entity"

	"gorm.io/gorm"
)

// WatchlistRepository defines read access to persisted watchlists.
type WatchlistRepository interface {
	SymbolsByUserID(ctx context.Context, userID uint) ([]string, error)
}

// NewWatchlistRepository creates a new GORM-based watchlist repository.
func NewWatchlistRepository(db *gorm.DB) WatchlistRepository {
	return &watchlistRepository{db: db}
}

type watchlistRepository struct {
	db *gorm.DB
}

// SymbolsByUserID returns the distinct symbols on the user's watchlist.
func (r *watchlistRepository) SymbolsByUserID(ctx context.Context, userID uint) ([]string, error) {
	var symbols []string
	err := r.db.WithContext(ctx).
		Model(&entity.WatchlistEntry{}).
		Where("user_id = ?", userID).
		Distinct().
		Pluck("symbol", &symbols).Error
	if err != nil {
		return nil, err
	}
	return symbols, nil
}
