package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-better/internal/config"
	"github.com/yourusername/footy-better/internal/metrics"
	"github.com/yourusername/footy-better/internal/models"
)

const (
	feedSourceName = "football_data"
	fetchCacheTTL  = 10 * time.Minute
)

// feedMatch is one fixture as the provider serializes it. Prices are quoted
// strings on the wire.
type feedMatch struct {
	ID          int64           `json:"id"`
	Competition feedCompetition `json:"competition"`
	Season      feedSeason      `json:"season"`
	UTCDate     string          `json:"utcDate"`
	Status      string          `json:"status"`
	HomeTeam    feedTeam        `json:"homeTeam"`
	AwayTeam    feedTeam        `json:"awayTeam"`
	Score       feedScore       `json:"score"`
	Statistics  *feedStatistics `json:"statistics,omitempty"`
	Odds        *feedOdds       `json:"odds,omitempty"`
}

type feedCompetition struct {
	Code string `json:"code"`
}

type feedSeason struct {
	Label string `json:"label"`
}

type feedTeam struct {
	Name string `json:"name"`
}

type feedScore struct {
	FullTime feedScorePair `json:"fullTime"`
}

type feedScorePair struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type feedStatistics struct {
	HomeCorners *int `json:"homeCorners"`
	AwayCorners *int `json:"awayCorners"`
	HomeCards   *int `json:"homeCards"`
	AwayCards   *int `json:"awayCards"`
}

type feedOdds struct {
	Home      string  `json:"home"`
	Draw      string  `json:"draw"`
	Away      string  `json:"away"`
	Over25    *string `json:"over25,omitempty"`
	Under25   *string `json:"under25,omitempty"`
	UpdatedAt *string `json:"updatedAt,omitempty"`
}

type feedMatchesResponse struct {
	Matches []feedMatch `json:"matches"`
}

// FixtureFeed implements FixtureSource against the fixture feed HTTP API.
// Fetched windows are cached briefly so a backtest warm-up and the live
// pipeline do not hammer the provider.
type FixtureFeed struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	normalizer *Normalizer
	cache      *cache.Cache
	logger     *logrus.Logger
}

// NewFixtureFeed creates a fixture feed client from configuration
func NewFixtureFeed(cfg *config.FeedConfig, logger *logrus.Logger) *FixtureFeed {
	if logger == nil {
		logger = logrus.New()
	}

	httpCfg := DefaultHTTPClientConfig()
	if cfg.TimeoutSeconds > 0 {
		httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	httpCfg.MaxRetries = cfg.RetryAttempts
	if cfg.RequestsPerSecond > 0 {
		httpCfg.RateLimit = cfg.RequestsPerSecond
	}
	if cfg.Burst > 0 {
		httpCfg.Burst = cfg.Burst
	}
	if cfg.BreakerThreshold > 0 {
		httpCfg.BreakerMax = cfg.BreakerThreshold
	}
	if cfg.BreakerCooldownSeconds > 0 {
		httpCfg.BreakerCooldown = time.Duration(cfg.BreakerCooldownSeconds) * time.Second
	}

	return &FixtureFeed{
		httpClient: NewRateLimitedHTTPClient(httpCfg, logger),
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		normalizer: NewNormalizer(logger),
		cache:      cache.New(fetchCacheTTL, 2*fetchCacheTTL),
		logger:     logger,
	}
}

// Name returns the data source name
func (f *FixtureFeed) Name() string {
	return feedSourceName
}

// Matches retrieves the competition's fixtures with kickoff in [from, to).
// Unparseable fixtures are skipped with a warning, never fatal.
func (f *FixtureFeed) Matches(ctx context.Context, competitionID string, from, to time.Time, forceRefresh bool) ([]*models.Match, error) {
	cacheKey := fmt.Sprintf("%s|%s|%s", competitionID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if !forceRefresh {
		if cached, found := f.cache.Get(cacheKey); found {
			if matches, ok := cached.([]*models.Match); ok {
				return matches, nil
			}
		}
	}

	raw, err := f.fetchWindow(ctx, competitionID, from, to)
	if err != nil {
		return nil, err
	}

	matches := make([]*models.Match, 0, len(raw))
	for i := range raw {
		match, err := f.normalizer.NormalizeMatch(feedSourceName, &raw[i])
		if err != nil {
			f.logger.WithError(err).WithField("fixture_id", raw[i].ID).Warn("Skipping malformed fixture")
			continue
		}
		if match.KickoffTime.Before(from) || !match.KickoffTime.Before(to) {
			continue
		}
		matches = append(matches, match)
	}

	f.cache.Set(cacheKey, matches, cache.DefaultExpiration)
	return matches, nil
}

func (f *FixtureFeed) fetchWindow(ctx context.Context, competitionID string, from, to time.Time) ([]feedMatch, error) {
	url := fmt.Sprintf("%s/v4/competitions/%s/matches?dateFrom=%s&dateTo=%s",
		f.baseURL, competitionID, from.Format("2006-01-02"), to.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewDataSourceError(feedSourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("X-Auth-Token", f.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		metrics.RecordFeedRequest("matches", "error", time.Since(start).Seconds())
		return nil, NewDataSourceError(feedSourceName, ErrCodeNetworkError, "failed to fetch fixtures", err)
	}
	defer resp.Body.Close()
	metrics.RecordFeedRequest("matches", fmt.Sprintf("%d", resp.StatusCode), time.Since(start).Seconds())

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, NewDataSourceError(feedSourceName, ErrCodeAuthenticationFailed, "invalid API key", ErrAuthenticationFailed)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewDataSourceError(feedSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewDataSourceError(feedSourceName, ErrCodeNotFound,
			fmt.Sprintf("competition %s not found", competitionID), nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, NewDataSourceError(feedSourceName, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var payload feedMatchesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, NewDataSourceError(feedSourceName, ErrCodeInvalidData, "failed to parse response", err)
	}

	return payload.Matches, nil
}

// Close releases the underlying HTTP client resources
func (f *FixtureFeed) Close() error {
	return f.httpClient.Close()
}
