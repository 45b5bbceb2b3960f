package social

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// PostgresStore reads social signals from the platform database. It
// implements every signal-source interface in this package. The feed
// engine never writes to these tables; they belong to the social and
// moderation subsystems.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a social signal store backed by the given database.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Relationships returns the user's outgoing relationship sets grouped by
// weight class.
func (s *PostgresStore) Relationships(ctx context.Context, userID string) (Relationships, error) {
	query := `
		SELECT kind, other_id
		FROM relationships
		WHERE user_id = $1`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return Relationships{}, fmt.Errorf("query relationships: %w", err)
	}
	defer rows.Close()

	var r Relationships
	for rows.Next() {
		var kind, otherID string
		if err := rows.Scan(&kind, &otherID); err != nil {
			return Relationships{}, fmt.Errorf("scan relationship: %w", err)
		}
		switch kind {
		case "subscription":
			r.Subscriptions = append(r.Subscriptions, otherID)
		case "friend":
			r.Friends = append(r.Friends, otherID)
		case "follow":
			r.Follows = append(r.Follows, otherID)
		}
	}
	if err := rows.Err(); err != nil {
		return Relationships{}, fmt.Errorf("query relationships: %w", err)
	}
	return r, nil
}

// RecentLikes returns up to limit most recently liked items with their
// embeddings.
func (s *PostgresStore) RecentLikes(ctx context.Context, userID string, limit int) ([]EngagedItem, error) {
	query := `
		SELECT l.item_id, c.author_id, c.embedding
		FROM likes l
		JOIN feed_candidates c ON c.id = l.item_id
		WHERE l.user_id = $1
		ORDER BY l.created_at DESC
		LIMIT $2`
	return s.engagedItems(ctx, query, userID, limit)
}

// RecentAuthored returns up to limit most recently authored items.
func (s *PostgresStore) RecentAuthored(ctx context.Context, userID string, limit int) ([]EngagedItem, error) {
	query := `
		SELECT id, author_id, embedding
		FROM feed_candidates
		WHERE author_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	return s.engagedItems(ctx, query, userID, limit)
}

func (s *PostgresStore) engagedItems(ctx context.Context, query, userID string, limit int) ([]EngagedItem, error) {
	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query engagement history: %w", err)
	}
	defer rows.Close()

	var items []EngagedItem
	for rows.Next() {
		var item EngagedItem
		var embedding pq.Float64Array
		if err := rows.Scan(&item.ItemID, &item.AuthorID, &embedding); err != nil {
			return nil, fmt.Errorf("scan engaged item: %w", err)
		}
		item.Embedding = []float64(embedding)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query engagement history: %w", err)
	}
	return items, nil
}

// ExplicitTopics returns the user's declared topic preferences.
func (s *PostgresStore) ExplicitTopics(ctx context.Context, userID string) ([]string, error) {
	var topics pq.StringArray
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(topics, '{}') FROM user_preferences WHERE user_id = $1`,
		userID).Scan(&topics)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query explicit topics: %w", err)
	}
	return []string(topics), nil
}

// Mutes returns the mutes created by userID, including expired ones.
func (s *PostgresStore) Mutes(ctx context.Context, userID string) ([]Mute, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT muter_id, muted_id, expires_at FROM mutes WHERE muter_id = $1`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query mutes: %w", err)
	}
	defer rows.Close()

	var mutes []Mute
	for rows.Next() {
		var m Mute
		var expiresAt sql.NullTime
		if err := rows.Scan(&m.MuterID, &m.MutedID, &expiresAt); err != nil {
			return nil, fmt.Errorf("scan mute: %w", err)
		}
		if expiresAt.Valid {
			t := expiresAt.Time
			m.ExpiresAt = &t
		}
		mutes = append(mutes, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query mutes: %w", err)
	}
	return mutes, nil
}

// Blocks returns every block involving userID, in either direction.
func (s *PostgresStore) Blocks(ctx context.Context, userID string) ([]Block, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT blocker_id, blocked_id FROM blocks WHERE blocker_id = $1 OR blocked_id = $1`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}
	defer rows.Close()

	var blocks []Block
	for rows.Next() {
		var b Block
		if err := rows.Scan(&b.BlockerID, &b.BlockedID); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}
	return blocks, nil
}

// ResolveCell returns the user's declared location cell, or empty string
// when the user has no declared location.
func (s *PostgresStore) ResolveCell(ctx context.Context, userID string) (string, error) {
	var cell sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT geo_cell FROM user_preferences WHERE user_id = $1`,
		userID).Scan(&cell)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query geo cell: %w", err)
	}
	return cell.String, nil
}
