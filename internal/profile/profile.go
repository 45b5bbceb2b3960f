// Package profile builds and caches per-user interest profiles: the
// aggregated embedding, relationship weights, explicit topics, and geo cell
// that drive personalized feed scoring.
package profile

import (
	"time"
)

// InterestProfile is the per-user personalization input for feed ranking.
// Profiles are ephemeral: built lazily, cached with a short TTL, and
// invalidated on relationship or negative-signal mutations. A profile with
// an empty InterestVector is valid; personalization then degrades to the
// unweighted base score.
type InterestProfile struct {
	UserID string `json:"user_id"`

	// InterestVector is the weighted mean of the user's recent engagement
	// embeddings. Empty for cold-start users.
	InterestVector []float64 `json:"interest_vector,omitempty"`

	// GeoCell is the user's declared location cell; empty when unknown.
	GeoCell string `json:"geo_cell,omitempty"`

	// ExplicitTopics are user-declared topic preferences, applied as an
	// additive boost rather than blended into the vector.
	ExplicitTopics []string `json:"explicit_topics,omitempty"`

	// RelationshipWeights maps related user IDs to their weight class.
	RelationshipWeights map[string]float64 `json:"relationship_weights,omitempty"`

	BuiltAt time.Time `json:"built_at"`
}

// RelationshipWeight returns the scoring multiplier for content from the
// given author: the weight class when related, neutral 1.0 otherwise.
func (p *InterestProfile) RelationshipWeight(authorID string) float64 {
	if p == nil {
		return 1.0
	}
	if w, ok := p.RelationshipWeights[authorID]; ok {
		return w
	}
	return 1.0
}

// HasExplicitTopic reports whether the user declared the given topic.
func (p *InterestProfile) HasExplicitTopic(topic string) bool {
	if p == nil {
		return false
	}
	for _, t := range p.ExplicitTopics {
		if t == topic {
			return true
		}
	}
	return false
}

// Degenerate reports whether the profile carries no personalization signal
// at all (cold start with no topics, geo, or relationships).
func (p *InterestProfile) Degenerate() bool {
	if p == nil {
		return true
	}
	return len(p.InterestVector) == 0 &&
		len(p.ExplicitTopics) == 0 &&
		len(p.RelationshipWeights) == 0 &&
		p.GeoCell == ""
}
