package profile

import (
	"context"
	"log/slog"
	"time"

	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/geo"
	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/scoring"
	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/social"
)

// History limits for interest aggregation.
const (
	MaxLikedHistory    = 50
	MaxAuthoredHistory = 20
)

// Default builder tuning.
const (
	DefaultTTL           = 5 * time.Minute
	DefaultSourceTimeout = 500 * time.Millisecond
)

// Builder constructs interest profiles from the external signal sources,
// with caching. Every signal source is optional at runtime: a source
// failure or timeout is logged and that signal omitted, so Profile always
// returns a usable (possibly degenerate) profile.
type Builder struct {
	graph    social.GraphStore
	behavior social.BehaviorStore
	topics   social.TopicStore
	geo      social.GeoResolver

	cache         Cache
	weights       *scoring.Weights
	ttl           time.Duration
	sourceTimeout time.Duration
	logger        *slog.Logger
}

// BuilderConfig carries optional Builder tuning.
type BuilderConfig struct {
	TTL           time.Duration
	SourceTimeout time.Duration
}

// NewBuilder creates a profile builder. Any nil signal source is treated as
// permanently unavailable for that signal; cache may be nil to disable
// caching (every request rebuilds).
func NewBuilder(
	graph social.GraphStore,
	behavior social.BehaviorStore,
	topics social.TopicStore,
	geoResolver social.GeoResolver,
	cache Cache,
	weights *scoring.Weights,
	cfg BuilderConfig,
	logger *slog.Logger,
) *Builder {
	if weights == nil {
		weights = scoring.DefaultWeights()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = DefaultSourceTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		graph:         graph,
		behavior:      behavior,
		topics:        topics,
		geo:           geoResolver,
		cache:         cache,
		weights:       weights,
		ttl:           cfg.TTL,
		sourceTimeout: cfg.SourceTimeout,
		logger:        logger,
	}
}

// Profile returns the user's interest profile, serving from cache when
// fresh and rebuilding otherwise. Never fails: users with no usable
// signals receive a valid degenerate profile.
func (b *Builder) Profile(ctx context.Context, userID string) *InterestProfile {
	if b.cache != nil {
		if p, ok := b.cache.Get(ctx, userID); ok {
			return p
		}
	}

	p := b.build(ctx, userID)

	if b.cache != nil {
		b.cache.Set(ctx, userID, p, b.ttl)
	}
	return p
}

// Invalidate drops the cached profile for the user, forcing a rebuild on
// the next request.
func (b *Builder) Invalidate(ctx context.Context, userID string) {
	if b.cache != nil {
		b.cache.Delete(ctx, userID)
	}
}

// MutationKind classifies profile-affecting mutations from external systems.
type MutationKind string

const (
	MutationRelationship MutationKind = "relationship"
	MutationMute         MutationKind = "mute"
	MutationBlock        MutationKind = "block"
	MutationPreference   MutationKind = "preference"
)

// Mutation is one profile-affecting change event. UserID is the acting
// user; OtherID is the other party for relationship/mute/block mutations.
type Mutation struct {
	Kind    MutationKind `json:"kind"`
	UserID  string       `json:"user_id"`
	OtherID string       `json:"other_id,omitempty"`
}

// OnMutation invalidates the cached profiles affected by the mutation.
// Blocks are bidirectional, so both parties are invalidated.
func (b *Builder) OnMutation(ctx context.Context, m Mutation) {
	if m.UserID != "" {
		b.Invalidate(ctx, m.UserID)
	}
	if m.Kind == MutationBlock && m.OtherID != "" {
		b.Invalidate(ctx, m.OtherID)
	}
}

// build assembles a fresh profile from whatever signal sources respond.
func (b *Builder) build(ctx context.Context, userID string) *InterestProfile {
	p := &InterestProfile{
		UserID:  userID,
		BuiltAt: time.Now(),
	}

	p.RelationshipWeights = b.relationshipWeights(ctx, userID)

	liked := b.recentLikes(ctx, userID)
	authored := b.recentAuthored(ctx, userID)
	p.InterestVector = b.aggregateVector(liked, authored, p.RelationshipWeights)

	if b.topics != nil {
		tctx, cancel := context.WithTimeout(ctx, b.sourceTimeout)
		topics, err := b.topics.ExplicitTopics(tctx, userID)
		cancel()
		if err != nil {
			b.logger.Warn("topic preferences unavailable, omitting signal",
				"user_id", userID,
				"error", err)
		} else {
			p.ExplicitTopics = topics
		}
	}

	if b.geo != nil {
		gctx, cancel := context.WithTimeout(ctx, b.sourceTimeout)
		cell, err := b.geo.ResolveCell(gctx, userID)
		cancel()
		if err != nil {
			b.logger.Warn("geo resolution unavailable, omitting signal",
				"user_id", userID,
				"error", err)
		} else {
			p.GeoCell = geo.NormalizeCell(cell)
		}
	}

	return p
}

// relationshipWeights maps related user IDs to their weight class. Follows
// are applied first and subscriptions last so the strongest class wins
// when a user appears in more than one set.
func (b *Builder) relationshipWeights(ctx context.Context, userID string) map[string]float64 {
	if b.graph == nil {
		return nil
	}

	gctx, cancel := context.WithTimeout(ctx, b.sourceTimeout)
	rels, err := b.graph.Relationships(gctx, userID)
	cancel()
	if err != nil {
		b.logger.Warn("relationship store unavailable, omitting signal",
			"user_id", userID,
			"error", err)
		return nil
	}

	if len(rels.Follows)+len(rels.Friends)+len(rels.Subscriptions) == 0 {
		return nil
	}

	weights := make(map[string]float64)
	for _, id := range rels.Follows {
		weights[id] = b.weights.Relationship.Followed
	}
	for _, id := range rels.Friends {
		weights[id] = b.weights.Relationship.Friend
	}
	for _, id := range rels.Subscriptions {
		weights[id] = b.weights.Relationship.Subscribed
	}
	return weights
}

func (b *Builder) recentLikes(ctx context.Context, userID string) []social.EngagedItem {
	if b.behavior == nil {
		return nil
	}
	lctx, cancel := context.WithTimeout(ctx, b.sourceTimeout)
	defer cancel()
	items, err := b.behavior.RecentLikes(lctx, userID, MaxLikedHistory)
	if err != nil {
		b.logger.Warn("like history unavailable, omitting signal",
			"user_id", userID,
			"error", err)
		return nil
	}
	return items
}

func (b *Builder) recentAuthored(ctx context.Context, userID string) []social.EngagedItem {
	if b.behavior == nil {
		return nil
	}
	actx, cancel := context.WithTimeout(ctx, b.sourceTimeout)
	defer cancel()
	items, err := b.behavior.RecentAuthored(actx, userID, MaxAuthoredHistory)
	if err != nil {
		b.logger.Warn("authored history unavailable, omitting signal",
			"user_id", userID,
			"error", err)
		return nil
	}
	return items
}

// aggregateVector computes the weighted mean of engagement embeddings.
// Liked items weigh by the relationship class of their author (neutral for
// unrelated authors); the user's own posts use the fixed self weight.
// Embeddings whose dimension disagrees with the first usable one are
// skipped rather than corrupting the aggregate.
func (b *Builder) aggregateVector(liked, authored []social.EngagedItem, relWeights map[string]float64) []float64 {
	dim := 0
	for _, item := range liked {
		if len(item.Embedding) > 0 {
			dim = len(item.Embedding)
			break
		}
	}
	if dim == 0 {
		for _, item := range authored {
			if len(item.Embedding) > 0 {
				dim = len(item.Embedding)
				break
			}
		}
	}
	if dim == 0 {
		return nil
	}

	sum := make([]float64, dim)
	var totalWeight float64

	accumulate := func(emb []float64, weight float64) {
		if len(emb) != dim || weight <= 0 {
			return
		}
		for i, v := range emb {
			sum[i] += v * weight
		}
		totalWeight += weight
	}

	for _, item := range liked {
		weight := scoring.WeightNeutral
		if w, ok := relWeights[item.AuthorID]; ok {
			weight = w
		}
		accumulate(item.Embedding, weight)
	}
	for _, item := range authored {
		accumulate(item.Embedding, b.weights.Relationship.Self)
	}

	if totalWeight == 0 {
		return nil
	}
	for i := range sum {
		sum[i] /= totalWeight
	}
	return sum
}
