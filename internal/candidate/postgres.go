package candidate

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// PostgresStore reads eligible candidates from the platform's content
// database. Only moderation-approved, non-deleted content within the
// eligibility window is returned.
type PostgresStore struct {
	db *sql.DB

	// window bounds how far back content remains feed-eligible.
	window time.Duration
}

// DefaultEligibilityWindow is how far back content remains feed-eligible.
const DefaultEligibilityWindow = 14 * 24 * time.Hour

// NewPostgresStore creates a candidate store backed by the given database.
// A non-positive window falls back to DefaultEligibilityWindow.
func NewPostgresStore(db *sql.DB, window time.Duration) *PostgresStore {
	if window <= 0 {
		window = DefaultEligibilityWindow
	}
	return &PostgresStore{db: db, window: window}
}

// EligibleCandidates returns the feed-eligible candidate universe.
func (s *PostgresStore) EligibleCandidates(ctx context.Context) ([]Candidate, error) {
	query := `
		SELECT id, author_id, embedding, engagement_score, created_at,
		       COALESCE(geo_cell, ''), COALESCE(author_reputation, 0), COALESCE(topics, '{}')
		FROM feed_candidates
		WHERE approved = TRUE
		  AND deleted_at IS NULL
		  AND created_at > $1
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, time.Now().Add(-s.window))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var c Candidate
		var embedding pq.Float64Array
		var topics pq.StringArray
		if err := rows.Scan(&c.ID, &c.AuthorID, &embedding, &c.EngagementScore,
			&c.CreatedAt, &c.GeoCell, &c.AuthorReputation, &topics); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		c.Embedding = []float64(embedding)
		c.Topics = []string(topics)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return candidates, nil
}
