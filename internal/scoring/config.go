package scoring

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/geo"
)

// RelationshipWeights defines the per-class multipliers used by the
// personalized pool selector and the interest profile builder.
type RelationshipWeights struct {
	Subscribed float64 `json:"subscribed"` // default: 2.0
	Friend     float64 `json:"friend"`     // default: 1.5
	Followed   float64 `json:"followed"`   // default: 1.0
	Self       float64 `json:"self"`       // default: 2.5 (vector aggregation only)
}

// DecayWeights defines time-decay tuning.
type DecayWeights struct {
	HalfLifeHours float64 `json:"half_life_hours"` // default: 24
}

// ReputationWeights defines the reputation factor tuning.
type ReputationWeights struct {
	MaxBoost float64 `json:"max_boost"` // default: 0.5 -> factor range [1.0, 1.5]
}

// TopicWeights defines the additive boost for explicit topic matches.
type TopicWeights struct {
	MatchBoost float64 `json:"match_boost"` // default: 0.25, added to the similarity term
}

// Weights holds all calibrated scoring parameters.
type Weights struct {
	Relationship RelationshipWeights `json:"relationship"`
	Decay        DecayWeights        `json:"decay"`
	Reputation   ReputationWeights   `json:"reputation"`
	Topic        TopicWeights        `json:"topic"`
	Geo          geo.BoostTable      `json:"geo"`
}

// CalibrationConfig represents the JSON structure of the calibration file.
type CalibrationConfig struct {
	Version string  `json:"version"` // Config version for future compatibility
	Weights Weights `json:"weights"` // Weight configurations
}

// DefaultWeights returns the standard scoring calibration.
//
// Personalized pool score:
//
//	engagement * timeDecay(age) * reputationFactor * relationshipWeight
//	  * (1 + cosineSimilarity + topicBoost) * geoBoost
//
// Relationship classes default to subscribed 2.0, friend 1.5, followed 1.0;
// unrelated authors are neutral. The decay half-life of 24h keeps day-old
// content at half weight. Geo boosts follow the containment bucket table.
func DefaultWeights() *Weights {
	return &Weights{
		Relationship: RelationshipWeights{
			Subscribed: WeightSubscribed,
			Friend:     WeightFriend,
			Followed:   WeightFollowed,
			Self:       WeightSelf,
		},
		Decay: DecayWeights{
			HalfLifeHours: 24,
		},
		Reputation: ReputationWeights{
			MaxBoost: 0.5,
		},
		Topic: TopicWeights{
			MatchBoost: 0.25,
		},
		Geo: geo.DefaultBoostTable(),
	}
}

// HalfLife returns the decay half-life as a duration.
func (w *Weights) HalfLife() time.Duration {
	return time.Duration(w.Decay.HalfLifeHours * float64(time.Hour))
}

// LoadCalibration loads scoring weights from a JSON calibration file.
// If the file cannot be read or parsed, returns default weights with an
// error so callers can log and continue degraded. Partial configurations
// are merged with defaults.
func LoadCalibration(filePath string) (*Weights, error) {
	if filePath == "" {
		return DefaultWeights(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read scoring calibration, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to read calibration file: %w", err)
	}

	var config CalibrationConfig
	if err := json.Unmarshal(data, &config); err != nil {
		slog.Warn("failed to parse scoring calibration, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to parse calibration file: %w", err)
	}

	merged := MergeCalibration(DefaultWeights(), &config.Weights)

	if !merged.Geo.Valid() {
		slog.Warn("calibrated geo boost table is not monotonic, using default geo table",
			"path", filePath)
		merged.Geo = geo.DefaultBoostTable()
	}

	slog.Info("loaded scoring calibration", "path", filePath, "version", config.Version)
	return merged, nil
}

// MergeCalibration merges override weights into base weights.
// Only non-zero values from the override are applied, which allows partial
// overrides in the calibration file.
func MergeCalibration(base *Weights, override *Weights) *Weights {
	if base == nil {
		return DefaultWeights()
	}
	if override == nil {
		result := *base
		return &result
	}

	result := *base

	if override.Relationship.Subscribed != 0 {
		result.Relationship.Subscribed = override.Relationship.Subscribed
	}
	if override.Relationship.Friend != 0 {
		result.Relationship.Friend = override.Relationship.Friend
	}
	if override.Relationship.Followed != 0 {
		result.Relationship.Followed = override.Relationship.Followed
	}
	if override.Relationship.Self != 0 {
		result.Relationship.Self = override.Relationship.Self
	}

	if override.Decay.HalfLifeHours != 0 {
		result.Decay.HalfLifeHours = override.Decay.HalfLifeHours
	}
	if override.Reputation.MaxBoost != 0 {
		result.Reputation.MaxBoost = override.Reputation.MaxBoost
	}
	if override.Topic.MatchBoost != 0 {
		result.Topic.MatchBoost = override.Topic.MatchBoost
	}

	if override.Geo.SameCell != 0 {
		result.Geo.SameCell = override.Geo.SameCell
	}
	if override.Geo.OneLevel != 0 {
		result.Geo.OneLevel = override.Geo.OneLevel
	}
	if override.Geo.TwoLevels != 0 {
		result.Geo.TwoLevels = override.Geo.TwoLevels
	}
	if override.Geo.ThreeLevels != 0 {
		result.Geo.ThreeLevels = override.Geo.ThreeLevels
	}

	return &result
}
