// Package candidate provides the read-only content candidate model and the
// stores that supply the eligible candidate universe for feed ranking.
package candidate

import (
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable indicates the content store could not return any
// candidates. Callers translate this into an empty feed rather than a
// request failure.
var ErrStoreUnavailable = errors.New("candidate store unavailable")

// Candidate represents one piece of moderation-approved content eligible for
// feed ranking. Candidates are supplied by the content store and treated as
// read-only input for the duration of a request.
type Candidate struct {
	ID              string    `json:"id"`
	AuthorID        string    `json:"author_id"`
	Embedding       []float64 `json:"embedding,omitempty"`
	EngagementScore float64   `json:"engagement_score"`
	CreatedAt       time.Time `json:"created_at"`

	// GeoCell is the content's geospatial cell identifier; empty when the
	// content has no location.
	GeoCell string `json:"geo_cell,omitempty"`

	// AuthorReputation is the author's reputation in [0, 1]; zero when unknown.
	AuthorReputation float64 `json:"author_reputation"`

	// Topics are the topic identifiers attached to the content, matched
	// against a requester's explicit topic preferences.
	Topics []string `json:"topics,omitempty"`
}

// Age returns the candidate's age relative to now.
func (c *Candidate) Age(now time.Time) time.Duration {
	return now.Sub(c.CreatedAt)
}

// HasTopic reports whether the candidate carries the given topic.
func (c *Candidate) HasTopic(topic string) bool {
	for _, t := range c.Topics {
		if t == topic {
			return true
		}
	}
	return false
}

// Store supplies the eligible candidate universe for a feed request.
// Implementations return only moderation-approved content; the feed engine
// never re-checks moderation status.
type Store interface {
	// EligibleCandidates returns the full set of candidates eligible for
	// ranking. The returned slice is owned by the caller.
	EligibleCandidates(ctx context.Context) ([]Candidate, error)
}
