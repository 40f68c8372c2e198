package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"tickrflow/internal/entity"
	"tickrflow/internal/notifier/repository"
	"tickrflow/pkg/logger"
	"tickrflow/pkg/utils"
)

const (
	// DefaultMaxArticles bounds how many articles one digest may carry.
	DefaultMaxArticles = 6
	// DefaultNewsWindowDays is how far back per-symbol news is fetched.
	DefaultNewsWindowDays = 5
	// generalDedupCap bounds the dedup buffer before final truncation.
	generalDedupCap = 20
)

// NewsService prepares the article set for one user's digest.
type NewsService interface {
	GetNewsForUser(ctx context.Context, symbols []string) ([]entity.FormattedArticle, error)
}

type newsService struct {
	newsRepo    repository.NewsRepository
	logger      *logger.Logger
	maxArticles int
	windowDays  int
}

// NewNewsService creates a NewsService. Zero maxArticles or windowDays fall
// back to the defaults.
func NewNewsService(newsRepo repository.NewsRepository, log *logger.Logger, maxArticles, windowDays int) NewsService {
	if maxArticles <= 0 {
		maxArticles = DefaultMaxArticles
	}
	if windowDays <= 0 {
		windowDays = DefaultNewsWindowDays
	}
	return &newsService{
		newsRepo:    newsRepo,
		logger:      log,
		maxArticles: maxArticles,
		windowDays:  windowDays,
	}
}

// GetNewsForUser returns up to maxArticles formatted articles for the given
// watchlist symbols. It tries per-symbol news first and falls back to the
// general feed when the symbols yield nothing (or none were given). The
// fallback lives here so callers see a single contract.
func (s *newsService) GetNewsForUser(ctx context.Context, symbols []string) ([]entity.FormattedArticle, error) {
	cleaned := cleanSymbols(symbols)

	if len(cleaned) > 0 {
		perSymbol := s.fetchPerSymbol(ctx, cleaned)
		collected := roundRobinMerge(cleaned, perSymbol, s.maxArticles)
		if len(collected) > 0 {
			return collected, nil
		}
	}

	general, err := s.newsRepo.GeneralNews(ctx)
	if err != nil {
		return nil, err
	}
	return dedupGeneral(general, s.maxArticles), nil
}

// fetchPerSymbol fans out one fetch per symbol. Each goroutine writes only
// its own slot, so no locking is needed. A failed fetch degrades to an empty
// list for that symbol.
func (s *newsService) fetchPerSymbol(ctx context.Context, symbols []string) [][]entity.Article {
	lists := make([][]entity.Article, len(symbols))

	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		i, symbol := i, symbol
		utils.GoSafe(func() {
			defer wg.Done()
			articles, err := s.newsRepo.CompanyNews(ctx, symbol, s.windowDays)
			if err != nil {
				s.logger.Error("Failed to fetch company news",
					logger.ErrorField(err),
					logger.StringField("symbol", symbol),
				)
				return
			}
			lists[i] = articles
		})
	}
	wg.Wait()

	return lists
}

// roundRobinMerge interleaves per-symbol article lists in fixed symbol order,
// one pick per symbol per round, up to max picks. Each pick is tagged with
// its symbol and round of draw, then the result is re-sorted by publication
// time descending with ties keeping draw order.
func roundRobinMerge(symbols []string, lists [][]entity.Article, max int) []entity.FormattedArticle {
	heads := make([]int, len(lists))
	collected := make([]entity.FormattedArticle, 0, max)

	for round := 0; round < max && len(collected) < max; round++ {
		for i := range symbols {
			if len(collected) >= max {
				break
			}
			if heads[i] >= len(lists[i]) {
				continue
			}
			article := lists[i][heads[i]]
			heads[i]++
			collected = append(collected, formatArticle(article, true, symbols[i], round))
		}
	}

	sort.SliceStable(collected, func(a, b int) bool {
		return collected[a].Datetime > collected[b].Datetime
	})
	if len(collected) > max {
		collected = collected[:max]
	}
	return collected
}

// dedupGeneral deduplicates the general feed by (id, url, headline) keeping
// first-seen order, buffers at most generalDedupCap candidates, then
// truncates to max with 0-based positions.
func dedupGeneral(articles []entity.Article, max int) []entity.FormattedArticle {
	seen := make(map[string]struct{}, generalDedupCap)
	unique := make([]entity.Article, 0, generalDedupCap)
	for _, a := range articles {
		key := a.DedupKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, a)
		if len(unique) >= generalDedupCap {
			break
		}
	}

	if len(unique) > max {
		unique = unique[:max]
	}
	formatted := make([]entity.FormattedArticle, 0, len(unique))
	for idx, a := range unique {
		formatted = append(formatted, formatArticle(a, false, "", idx))
	}
	return formatted
}

func formatArticle(a entity.Article, isCompanyNews bool, symbol string, position int) entity.FormattedArticle {
	return entity.FormattedArticle{
		Headline:      strings.TrimSpace(a.Headline),
		Source:        a.Source,
		URL:           strings.TrimSpace(a.URL),
		Summary:       strings.TrimSpace(a.Summary),
		Datetime:      a.Datetime,
		RelativeTime:  utils.RelativeTime(a.Datetime),
		IsCompanyNews: isCompanyNews,
		Symbol:        symbol,
		Position:      position,
	}
}

func cleanSymbols(symbols []string) []string {
	cleaned := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return cleaned
}
