package feed

import (
	"time"

	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/candidate"
	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/geo"
	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/profile"
	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/scoring"
)

// RandSource is the randomness a selector draws from. *rand.Rand satisfies it.
type RandSource interface {
	Intn(n int) int
	Float64() float64
}

// Selector draws exactly one candidate for a slot, or reports exhaustion.
// Selection is weighted-random proportional to the pool's scoring strategy,
// never a deterministic top-K cut. Candidates in the excluded set (already
// placed this response, or served under the request's cursor) are skipped.
type Selector interface {
	Pool() Pool

	// Select returns the chosen candidate and true, or false when the pool
	// has no eligible, non-excluded candidates left.
	Select(rng RandSource, now time.Time, eligible []candidate.Candidate,
		excluded map[string]struct{}, prof *profile.InterestProfile) (candidate.Candidate, bool)
}

// RandomSelector scores candidates by recency decay and a light reputation
// factor only. No engagement or personalization weighting: its job is feed
// diversity independent of popularity.
type RandomSelector struct {
	weights *scoring.Weights
}

// NewRandomSelector creates the random pool selector.
func NewRandomSelector(weights *scoring.Weights) *RandomSelector {
	if weights == nil {
		weights = scoring.DefaultWeights()
	}
	return &RandomSelector{weights: weights}
}

func (s *RandomSelector) Pool() Pool { return PoolRandom }

func (s *RandomSelector) Select(rng RandSource, now time.Time, eligible []candidate.Candidate,
	excluded map[string]struct{}, _ *profile.InterestProfile) (candidate.Candidate, bool) {
	return weightedDraw(rng, eligible, excluded, func(c *candidate.Candidate) float64 {
		return scoring.TimeDecay(c.Age(now), s.weights.HalfLife()) *
			scoring.ReputationFactor(c.AuthorReputation, s.weights.Reputation.MaxBoost)
	})
}

// TrendingSelector scores candidates by engagement, decayed by age and
// lightly boosted by reputation. High engagement raises selection
// probability without guaranteeing placement.
type TrendingSelector struct {
	weights *scoring.Weights
}

// NewTrendingSelector creates the trending pool selector.
func NewTrendingSelector(weights *scoring.Weights) *TrendingSelector {
	if weights == nil {
		weights = scoring.DefaultWeights()
	}
	return &TrendingSelector{weights: weights}
}

func (s *TrendingSelector) Pool() Pool { return PoolTrending }

func (s *TrendingSelector) Select(rng RandSource, now time.Time, eligible []candidate.Candidate,
	excluded map[string]struct{}, _ *profile.InterestProfile) (candidate.Candidate, bool) {
	return weightedDraw(rng, eligible, excluded, func(c *candidate.Candidate) float64 {
		return c.EngagementScore *
			scoring.TimeDecay(c.Age(now), s.weights.HalfLife()) *
			scoring.ReputationFactor(c.AuthorReputation, s.weights.Reputation.MaxBoost)
	})
}

// PersonalizedSelector scores candidates with the full personalization
// stack: the trending base score multiplied by the requester's relationship
// weight for the author, embedding similarity, explicit topic matches, and
// geographic proximity. With a nil or degenerate profile every multiplier
// is neutral and the score reduces to the trending base.
type PersonalizedSelector struct {
	weights *scoring.Weights
}

// NewPersonalizedSelector creates the personalized pool selector.
func NewPersonalizedSelector(weights *scoring.Weights) *PersonalizedSelector {
	if weights == nil {
		weights = scoring.DefaultWeights()
	}
	return &PersonalizedSelector{weights: weights}
}

func (s *PersonalizedSelector) Pool() Pool { return PoolPersonalized }

func (s *PersonalizedSelector) Select(rng RandSource, now time.Time, eligible []candidate.Candidate,
	excluded map[string]struct{}, prof *profile.InterestProfile) (candidate.Candidate, bool) {
	return weightedDraw(rng, eligible, excluded, func(c *candidate.Candidate) float64 {
		base := c.EngagementScore *
			scoring.TimeDecay(c.Age(now), s.weights.HalfLife()) *
			scoring.ReputationFactor(c.AuthorReputation, s.weights.Reputation.MaxBoost)

		similarity := 1.0
		if prof != nil {
			similarity += scoring.CosineSimilarity(prof.InterestVector, c.Embedding)
			if s.topicMatch(prof, c) {
				similarity += s.weights.Topic.MatchBoost
			}
		}
		if similarity < 0 {
			similarity = 0
		}

		geoBoost := 1.0
		if prof != nil {
			geoBoost = geo.ProximityBoost(prof.GeoCell, c.GeoCell, s.weights.Geo)
		}

		return base * prof.RelationshipWeight(c.AuthorID) * similarity * geoBoost
	})
}

func (s *PersonalizedSelector) topicMatch(prof *profile.InterestProfile, c *candidate.Candidate) bool {
	for _, topic := range c.Topics {
		if prof.HasExplicitTopic(topic) {
			return true
		}
	}
	return false
}

// weightedDraw picks one non-excluded candidate with probability
// proportional to score(c). When every eligible candidate scores zero the
// draw falls back to uniform, so a pool with candidates never reports
// exhaustion just because scores bottomed out.
func weightedDraw(rng RandSource, eligible []candidate.Candidate,
	excluded map[string]struct{}, score func(*candidate.Candidate) float64) (candidate.Candidate, bool) {

	type scored struct {
		index  int
		weight float64
	}

	pool := make([]scored, 0, len(eligible))
	var total float64
	for i := range eligible {
		if _, gone := excluded[eligible[i].ID]; gone {
			continue
		}
		w := score(&eligible[i])
		if w < 0 {
			w = 0
		}
		pool = append(pool, scored{index: i, weight: w})
		total += w
	}

	if len(pool) == 0 {
		return candidate.Candidate{}, false
	}

	if total <= 0 {
		return eligible[pool[rng.Intn(len(pool))].index], true
	}

	target := rng.Float64() * total
	var cumulative float64
	for _, s := range pool {
		cumulative += s.weight
		if target < cumulative {
			return eligible[s.index], true
		}
	}
	// Floating point edge: target landed on the last boundary.
	return eligible[pool[len(pool)-1].index], true
}
