// Package scoring provides the ranking component calculations shared by the
// feed pool selectors, with deploy-time calibration support.
package scoring

import (
	"math"
	"time"
)

// Relationship weight classes applied when scoring content from connected authors.
// Unrelated authors always score with a neutral 1.0 multiplier.
const (
	WeightSubscribed = 2.0
	WeightFriend     = 1.5
	WeightFollowed   = 1.0
	// WeightSelf is the aggregation weight for a user's own authored content
	// when building their interest vector.
	WeightSelf = 2.5
	// WeightNeutral is the multiplier for authors with no relationship.
	WeightNeutral = 1.0
)

// TimeDecay computes an exponential age decay factor in (0, 1].
// Content at age zero scores 1.0 and loses half its weight every halfLife.
// Non-positive ages (clock skew, future-dated content) clamp to 1.0.
func TimeDecay(age time.Duration, halfLife time.Duration) float64 {
	if age <= 0 {
		return 1.0
	}
	if halfLife <= 0 {
		return 1.0
	}
	return math.Pow(0.5, float64(age)/float64(halfLife))
}

// ReputationFactor converts an author reputation in [0, 1] into a light
// multiplicative factor in [1, 1+maxBoost]. Out-of-range reputations are
// clamped, so a missing (zero) reputation is simply neutral.
func ReputationFactor(reputation float64, maxBoost float64) float64 {
	if reputation < 0 {
		reputation = 0
	}
	if reputation > 1 {
		reputation = 1
	}
	if maxBoost < 0 {
		maxBoost = 0
	}
	return 1.0 + reputation*maxBoost
}

// CosineSimilarity computes the cosine similarity between two embedding
// vectors. Returns 0 when either vector is empty, the dimensions differ,
// or either vector has zero magnitude, so degenerate profiles degrade to
// the unweighted base score rather than erroring.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Engagement derives a single engagement score from raw interaction counts.
// Comments and shares signal more effort than likes and weigh accordingly.
func Engagement(likes, comments, shares int) float64 {
	if likes < 0 {
		likes = 0
	}
	if comments < 0 {
		comments = 0
	}
	if shares < 0 {
		shares = 0
	}
	return float64(likes) + 2.0*float64(comments) + 3.0*float64(shares)
}
