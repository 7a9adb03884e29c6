// Package datasource fetches fixtures, results and odds from external
// providers and normalizes them into engine models.
package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/footy-better/internal/models"
)

// FixtureSource is the interface for fetching fixture data from external
// providers. Matches returns every fixture of the competition whose kickoff
// falls inside [from, to); forceRefresh bypasses any cache the source keeps.
type FixtureSource interface {
	Matches(ctx context.Context, competitionID string, from, to time.Time, forceRefresh bool) ([]*models.Match, error)

	// Name returns the name of the data source
	Name() string
}

// OddsSnapshotter exposes the latest streamed prices for a fixture.
type OddsSnapshotter interface {
	Snapshot(matchID uuid.UUID) (*models.MatchOdds, bool)
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

// Sentinel errors for errors.Is checks across provider boundaries
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrCircuitOpen          = errors.New("circuit breaker open")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
