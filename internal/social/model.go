// Package social defines the external signal-source interfaces the feed
// engine consumes: the social graph, behavioral history, explicit topic
// preferences, negative signals (mutes and blocks), and geo resolution.
// All of these stores are owned by other subsystems; the feed engine only
// reads from them and must degrade gracefully when any of them fail.
package social

import (
	"context"
	"time"
)

// Relationships holds the outgoing relationship sets for one user, grouped
// by weight class. A user ID may appear in at most one set; subscription
// outranks friendship outranks a plain follow.
type Relationships struct {
	Subscriptions []string
	Friends       []string
	Follows       []string
}

// EngagedItem is one piece of content a user interacted with, carrying the
// embedding used for interest aggregation.
type EngagedItem struct {
	ItemID    string
	AuthorID  string
	Embedding []float64
}

// Mute is a unidirectional, possibly expiring exclusion: the muter no
// longer sees the muted user's content until ExpiresAt (nil = indefinite).
type Mute struct {
	MuterID   string
	MutedID   string
	ExpiresAt *time.Time
}

// Expired reports whether the mute has lapsed as of now.
func (m Mute) Expired(now time.Time) bool {
	return m.ExpiresAt != nil && !now.Before(*m.ExpiresAt)
}

// Block is a permanent exclusion, effective in both directions: neither
// party's content is shown to the other.
type Block struct {
	BlockerID string
	BlockedID string
}

// Involves reports whether the block involves the given pair in either direction.
func (b Block) Involves(userID, otherID string) bool {
	return (b.BlockerID == userID && b.BlockedID == otherID) ||
		(b.BlockerID == otherID && b.BlockedID == userID)
}

// GraphStore supplies relationship sets for a user.
type GraphStore interface {
	Relationships(ctx context.Context, userID string) (Relationships, error)
}

// BehaviorStore supplies a user's recent engagement history with embeddings.
type BehaviorStore interface {
	// RecentLikes returns up to limit most recently liked items.
	RecentLikes(ctx context.Context, userID string, limit int) ([]EngagedItem, error)

	// RecentAuthored returns up to limit most recently authored items.
	RecentAuthored(ctx context.Context, userID string, limit int) ([]EngagedItem, error)
}

// TopicStore supplies a user's explicitly declared topic preferences.
type TopicStore interface {
	ExplicitTopics(ctx context.Context, userID string) ([]string, error)
}

// NegativeStore supplies mutes and blocks for negative-signal filtering.
type NegativeStore interface {
	// Mutes returns the mutes created by userID, including expired ones;
	// expiry is evaluated by the caller at request time.
	Mutes(ctx context.Context, userID string) ([]Mute, error)

	// Blocks returns every block involving userID, in either direction.
	Blocks(ctx context.Context, userID string) ([]Block, error)
}

// GeoResolver resolves a user's declared location to a geospatial cell.
type GeoResolver interface {
	// ResolveCell returns the user's cell identifier, or empty string when
	// the user has no declared location.
	ResolveCell(ctx context.Context, userID string) (string, error)
}
