package service

import (
	"context"

	"tickrflow/internal/notifier/repository"
	"tickrflow/pkg/logger"
)

// WatchlistService resolves a user's email to the symbols they track.
type WatchlistService interface {
	SymbolsByEmail(ctx context.Context, email string) []string
}

type watchlistService struct {
	userRepo      repository.UserRepository
	watchlistRepo repository.WatchlistRepository
	logger        *logger.Logger
}

// NewWatchlistService creates a WatchlistService.
func NewWatchlistService(userRepo repository.UserRepository, watchlistRepo repository.WatchlistRepository, log *logger.Logger) WatchlistService {
	return &watchlistService{
		userRepo:      userRepo,
		watchlistRepo: watchlistRepo,
		logger:        log,
	}
}

// SymbolsByEmail returns the user's watchlist symbols. Missing users and
// lookup failures both come back as an empty set: digest delivery is
// best-effort, so this path fails open and the caller falls back to the
// general feed.
func (s *watchlistService) SymbolsByEmail(ctx context.Context, email string) []string {
	if email == "" {
		return nil
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Error("Failed to look up user for watchlist",
			logger.ErrorField(err),
			logger.StringField("email", email),
		)
		return nil
	}
	if user == nil {
		return nil
	}

	symbols, err := s.watchlistRepo.SymbolsByUserID(ctx, user.ID)
	if err != nil {
		s.logger.Error("Failed to load watchlist",
			logger.ErrorField(err),
			logger.StringField("email", email),
		)
		return nil
	}
	return symbols
}
