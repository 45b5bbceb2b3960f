package social

import (
	"context"
	"sync"
)

// InMemoryStore is an in-memory implementation of every signal-source
// interface in this package. Thread-safe via RWMutex; used in tests and
// single-node development.
type InMemoryStore struct {
	mu            sync.RWMutex
	relationships map[string]Relationships
	likes         map[string][]EngagedItem
	authored      map[string][]EngagedItem
	topics        map[string][]string
	mutes         map[string][]Mute
	blocks        []Block
	cells         map[string]string
}

// NewInMemoryStore creates a new empty in-memory signal store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		relationships: make(map[string]Relationships),
		likes:         make(map[string][]EngagedItem),
		authored:      make(map[string][]EngagedItem),
		topics:        make(map[string][]string),
		mutes:         make(map[string][]Mute),
		cells:         make(map[string]string),
	}
}

// SetRelationships replaces a user's relationship sets.
func (s *InMemoryStore) SetRelationships(userID string, r Relationships) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relationships[userID] = r
}

// AddLike appends a liked item to a user's history (most recent last).
func (s *InMemoryStore) AddLike(userID string, item EngagedItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.likes[userID] = append(s.likes[userID], item)
}

// AddAuthored appends an authored item to a user's history (most recent last).
func (s *InMemoryStore) AddAuthored(userID string, item EngagedItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authored[userID] = append(s.authored[userID], item)
}

// SetTopics replaces a user's explicit topic preferences.
func (s *InMemoryStore) SetTopics(userID string, topics []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics[userID] = append([]string(nil), topics...)
}

// AddMute records a mute created by the muter.
func (s *InMemoryStore) AddMute(m Mute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutes[m.MuterID] = append(s.mutes[m.MuterID], m)
}

// AddBlock records a block.
func (s *InMemoryStore) AddBlock(b Block) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks = append(s.blocks, b)
}

// SetCell records a user's declared location cell.
func (s *InMemoryStore) SetCell(userID, cell string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cells[userID] = cell
}

// Relationships returns the user's relationship sets.
func (s *InMemoryStore) Relationships(_ context.Context, userID string) (Relationships, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r := s.relationships[userID]
	return Relationships{
		Subscriptions: append([]string(nil), r.Subscriptions...),
		Friends:       append([]string(nil), r.Friends...),
		Follows:       append([]string(nil), r.Follows...),
	}, nil
}

// RecentLikes returns up to limit most recently liked items.
func (s *InMemoryStore) RecentLikes(_ context.Context, userID string, limit int) ([]EngagedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return recent(s.likes[userID], limit), nil
}

// RecentAuthored returns up to limit most recently authored items.
func (s *InMemoryStore) RecentAuthored(_ context.Context, userID string, limit int) ([]EngagedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return recent(s.authored[userID], limit), nil
}

// ExplicitTopics returns the user's declared topic preferences.
func (s *InMemoryStore) ExplicitTopics(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.topics[userID]...), nil
}

// Mutes returns all mutes created by userID.
func (s *InMemoryStore) Mutes(_ context.Context, userID string) ([]Mute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Mute(nil), s.mutes[userID]...), nil
}

// Blocks returns every block involving userID.
func (s *InMemoryStore) Blocks(_ context.Context, userID string) ([]Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []Block
	for _, b := range s.blocks {
		if b.BlockerID == userID || b.BlockedID == userID {
			result = append(result, b)
		}
	}
	return result, nil
}

// ResolveCell returns the user's declared location cell.
func (s *InMemoryStore) ResolveCell(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cells[userID], nil
}

// recent returns the last limit items, most recent first.
func recent(items []EngagedItem, limit int) []EngagedItem {
	if limit <= 0 || len(items) == 0 {
		return nil
	}
	start := len(items) - limit
	if start < 0 {
		start = 0
	}
	tail := items[start:]
	result := make([]EngagedItem, len(tail))
	for i, item := range tail {
		result[len(tail)-1-i] = item
	}
	return result
}
