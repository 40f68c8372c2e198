package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"tickrflow/internal/entity"
	"tickrflow/internal/notifier/dto"
	"tickrflow/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNewsRepo struct {
	companyNews      map[string][]entity.Article
	companyNewsErr   map[string]error
	generalNews      []entity.Article
	generalNewsErr   error
	generalNewsCalls int32
}

func (f *fakeNewsRepo) CompanyNews(_ context.Context, symbol string, _ int) ([]entity.Article, error) {
	if err, ok := f.companyNewsErr[symbol]; ok {
		return nil, err
	}
	return f.companyNews[symbol], nil
}

func (f *fakeNewsRepo) GeneralNews(context.Context) ([]entity.Article, error) {
	atomic.AddInt32(&f.generalNewsCalls, 1)
	return f.generalNews, f.generalNewsErr
}

func (f *fakeNewsRepo) SearchStocks(context.Context, string) (*dto.StockSearchResponse, error) {
	return &dto.StockSearchResponse{}, nil
}

func (f *fakeNewsRepo) CompanyProfile(context.Context, string) (*dto.CompanyProfile, error) {
	return &dto.CompanyProfile{}, nil
}

func article(id int64, headline string, datetime int64) entity.Article {
	return entity.Article{
		ID:       id,
		Headline: headline,
		Datetime: datetime,
		Summary:  "summary of " + headline,
		URL:      fmt.Sprintf("https://news.example.com/%d", id),
		Source:   "Example Wire",
	}
}

func TestRoundRobinMergeInterleavesThenSortsByTimestamp(t *testing.T) {
	// AAPL has 3 articles, MSFT has 1; draw order is
	// AAPL[0], MSFT[0], AAPL[1], AAPL[2], then re-sorted by timestamp.
	aapl := []entity.Article{
		article(1, "aapl oldest", 100),
		article(2, "aapl newest", 400),
		article(3, "aapl middle", 300),
	}
	msft := []entity.Article{
		article(4, "msft only", 200),
	}

	got := roundRobinMerge([]string{"AAPL", "MSFT"}, [][]entity.Article{aapl, msft}, 6)

	require.Len(t, got, 4)
	assert.Equal(t, []string{"aapl newest", "aapl middle", "msft only", "aapl oldest"},
		[]string{got[0].Headline, got[1].Headline, got[2].Headline, got[3].Headline})

	// draw metadata survives the re-sort
	for _, fa := range got {
		assert.True(t, fa.IsCompanyNews)
	}
	assert.Equal(t, "MSFT", got[2].Symbol)
	assert.Equal(t, 0, got[2].Position)
	assert.Equal(t, "AAPL", got[1].Symbol)
	assert.Equal(t, 2, got[1].Position)
}

func TestRoundRobinMergeNeverExceedsMax(t *testing.T) {
	var aapl, msft []entity.Article
	for i := int64(0); i < 10; i++ {
		aapl = append(aapl, article(i, fmt.Sprintf("aapl %d", i), 1000+i))
		msft = append(msft, article(100+i, fmt.Sprintf("msft %d", i), 2000+i))
	}

	got := roundRobinMerge([]string{"AAPL", "MSFT"}, [][]entity.Article{aapl, msft}, 6)
	assert.Len(t, got, 6)
}

func TestRoundRobinMergeTiesKeepDrawOrder(t *testing.T) {
	// identical timestamps: the stable sort must preserve round-robin order
	a := []entity.Article{article(1, "first", 500), article(3, "third", 500)}
	b := []entity.Article{article(2, "second", 500)}

	got := roundRobinMerge([]string{"A", "B"}, [][]entity.Article{a, b}, 6)

	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].Headline)
	assert.Equal(t, "second", got[1].Headline)
	assert.Equal(t, "third", got[2].Headline)
}

func TestRoundRobinMergeEmptyLists(t *testing.T) {
	got := roundRobinMerge([]string{"A", "B"}, [][]entity.Article{nil, nil}, 6)
	assert.Empty(t, got)
}

func TestDedupGeneralRemovesDuplicatesAndIndexes(t *testing.T) {
	dup := article(1, "dup", 100)
	articles := []entity.Article{
		dup,
		dup, // same (id, url, headline)
		article(2, "unique", 200),
		article(3, "another", 300),
	}

	got := dedupGeneral(articles, 6)

	require.Len(t, got, 3)
	seen := map[string]bool{}
	for idx, fa := range got {
		key := fmt.Sprintf("%s|%s", fa.URL, fa.Headline)
		assert.False(t, seen[key], "duplicate in output: %s", key)
		seen[key] = true
		assert.Equal(t, idx, fa.Position)
		assert.False(t, fa.IsCompanyNews)
		assert.Empty(t, fa.Symbol)
	}
	// first-seen order is preserved, no re-sort by timestamp
	assert.Equal(t, "dup", got[0].Headline)
}

func TestDedupGeneralTruncatesToMax(t *testing.T) {
	var articles []entity.Article
	for i := int64(0); i < 30; i++ {
		articles = append(articles, article(i, fmt.Sprintf("a%d", i), i))
	}

	got := dedupGeneral(articles, 6)

	require.Len(t, got, 6)
	for idx, fa := range got {
		assert.Equal(t, idx, fa.Position)
	}
}

func TestGetNewsForUserUsesWatchlistSymbols(t *testing.T) {
	repo := &fakeNewsRepo{
		companyNews: map[string][]entity.Article{
			"AAPL": {article(1, "aapl", 100)},
		},
	}
	svc := NewNewsService(repo, logger.NewNop(), 6, 5)

	got, err := svc.GetNewsForUser(context.Background(), []string{" aapl "})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "AAPL", got[0].Symbol)
	assert.EqualValues(t, 0, repo.generalNewsCalls, "general feed must not be fetched when symbols yield articles")
}

func TestGetNewsForUserFallsBackToGeneralFeed(t *testing.T) {
	repo := &fakeNewsRepo{
		companyNews: map[string][]entity.Article{},
		companyNewsErr: map[string]error{
			"AAPL": fmt.Errorf("remote down"),
		},
		generalNews: []entity.Article{
			article(1, "general one", 100),
			article(2, "general two", 200),
		},
	}
	svc := NewNewsService(repo, logger.NewNop(), 6, 5)

	got, err := svc.GetNewsForUser(context.Background(), []string{"AAPL", "MSFT"})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.EqualValues(t, 1, repo.generalNewsCalls)
	for _, fa := range got {
		assert.False(t, fa.IsCompanyNews)
	}
}

func TestGetNewsForUserNoSymbolsGoesStraightToGeneral(t *testing.T) {
	var general []entity.Article
	for i := int64(0); i < 8; i++ {
		general = append(general, article(i, fmt.Sprintf("g%d", i), i))
	}
	repo := &fakeNewsRepo{generalNews: general}
	svc := NewNewsService(repo, logger.NewNop(), 6, 5)

	got, err := svc.GetNewsForUser(context.Background(), nil)

	require.NoError(t, err)
	require.Len(t, got, 6)
	for idx, fa := range got {
		assert.Equal(t, idx, fa.Position)
	}
}

func TestGetNewsForUserPropagatesGeneralFeedError(t *testing.T) {
	repo := &fakeNewsRepo{generalNewsErr: fmt.Errorf("boom")}
	svc := NewNewsService(repo, logger.NewNop(), 6, 5)

	_, err := svc.GetNewsForUser(context.Background(), nil)
	assert.Error(t, err)
}

func TestMergedArticlesAlwaysHaveRequiredFields(t *testing.T) {
	// The repository filters invalid articles before the merge ever sees
	// them; this guards the formatting end of the property.
	repo := &fakeNewsRepo{
		companyNews: map[string][]entity.Article{
			"AAPL": {article(1, "one", 100), article(2, "two", 200)},
		},
	}
	svc := NewNewsService(repo, logger.NewNop(), 6, 5)

	got, err := svc.GetNewsForUser(context.Background(), []string{"AAPL"})

	require.NoError(t, err)
	for _, fa := range got {
		assert.NotEmpty(t, fa.Headline)
		assert.NotEmpty(t, fa.URL)
		assert.NotEmpty(t, fa.Summary)
	}
}
