package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tickrflow/internal/entity"
	"tickrflow/internal/notifier/config"
	"tickrflow/internal/notifier/dto"
	"tickrflow/pkg/logger"
	"tickrflow/pkg/utils"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Cache lifetimes per endpoint class. A miss always re-fetches; there is no
// stale-while-revalidate behavior.
const (
	companyNewsCacheTTL = 300 * time.Second
	generalNewsCacheTTL = 300 * time.Second
	searchCacheTTL      = 1800 * time.Second
	profileCacheTTL     = 3600 * time.Second
)

const maxErrorBodyBytes = 512

// UpstreamError is returned when the news API answers with a non-2xx status.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

// NewsRepository fetches market news and stock metadata from Finnhub.
type NewsRepository interface {
	CompanyNews(ctx context.Context, symbol string, windowDays int) ([]entity.Article, error)
	GeneralNews(ctx context.Context) ([]entity.Article, error)
	SearchStocks(ctx context.Context, query string) (*dto.StockSearchResponse, error)
	CompanyProfile(ctx context.Context, symbol string) (*dto.CompanyProfile, error)
}

type finnhubRepository struct {
	client         *http.Client
	cfg            *config.Config
	logger         *logger.Logger
	cache          *gocache.Cache
	requestLimiter *rate.Limiter
}

// NewFinnhubRepository creates a news repository backed by the Finnhub API.
func NewFinnhubRepository(cfg *config.Config, log *logger.Logger) (NewsRepository, error) {
	if cfg.Finnhub.APIKey == "" {
		return nil, fmt.Errorf("finnhub api key is required")
	}

	perMinute := cfg.Finnhub.MaxRequestPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}
	secondsPerRequest := time.Minute / time.Duration(perMinute)

	return &finnhubRepository{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		cfg:            cfg,
		logger:         log,
		cache:          gocache.New(gocache.NoExpiration, 10*time.Minute),
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}, nil
}

// CompanyNews fetches per-symbol news for the past windowDays days and drops
// articles that fail shape validation.
func (r *finnhubRepository) CompanyNews(ctx context.Context, symbol string, windowDays int) ([]entity.Article, error) {
	from, to := utils.DateRange(windowDays)
	params := url.Values{}
	params.Set("symbol", strings.ToUpper(strings.TrimSpace(symbol)))
	params.Set("from", from)
	params.Set("to", to)

	var articles []entity.Article
	if err := r.fetchJSON(ctx, "/company-news", params, companyNewsCacheTTL, &articles); err != nil {
		return nil, err
	}
	return filterValid(articles), nil
}

// GeneralNews fetches the general/category market feed and drops articles
// that fail shape validation.
func (r *finnhubRepository) GeneralNews(ctx context.Context) ([]entity.Article, error) {
	params := url.Values{}
	params.Set("category", "general")

	var articles []entity.Article
	if err := r.fetchJSON(ctx, "/news", params, generalNewsCacheTTL, &articles); err != nil {
		return nil, err
	}
	return filterValid(articles), nil
}

// SearchStocks looks up stocks matching the query.
func (r *finnhubRepository) SearchStocks(ctx context.Context, query string) (*dto.StockSearchResponse, error) {
	params := url.Values{}
	params.Set("q", strings.TrimSpace(query))

	var resp dto.StockSearchResponse
	if err := r.fetchJSON(ctx, "/search", params, searchCacheTTL, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CompanyProfile fetches the profile for one symbol.
func (r *finnhubRepository) CompanyProfile(ctx context.Context, symbol string) (*dto.CompanyProfile, error) {
	params := url.Values{}
	params.Set("symbol", strings.ToUpper(strings.TrimSpace(symbol)))

	var profile dto.CompanyProfile
	if err := r.fetchJSON(ctx, "/stock/profile2", params, profileCacheTTL, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// fetchJSON performs a cached GET against the Finnhub API. The cache key
// excludes the token so rotating keys does not invalidate entries.
func (r *finnhubRepository) fetchJSON(ctx context.Context, path string, params url.Values, ttl time.Duration, out interface{}) error {
	cacheKey := path + "?" + params.Encode()
	if cached, found := r.cache.Get(cacheKey); found {
		return json.Unmarshal(cached.([]byte), out)
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for request limit: %w", err)
	}

	params.Set("token", r.cfg.Finnhub.APIKey)
	apiURL := r.cfg.Finnhub.BaseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call news API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		r.logger.Error("Received non-2xx response from news API",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("path", path),
		)
		return &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}

	r.cache.Set(cacheKey, body, ttl)
	return nil
}

func filterValid(articles []entity.Article) []entity.Article {
	valid := make([]entity.Article, 0, len(articles))
	for _, a := range articles {
		if a.Valid() {
			valid = append(valid, a)
		}
	}
	return valid
}
