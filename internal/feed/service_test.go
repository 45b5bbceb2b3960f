package feed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/candidate"
	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/social"
)

// failingStore simulates candidate store unavailability.
type failingStore struct{}

func (failingStore) EligibleCandidates(_ context.Context) ([]candidate.Candidate, error) {
	return nil, errors.New("store unreachable")
}

func seedStore(n int) *candidate.InMemoryStore {
	store := candidate.NewInMemoryStore()
	for i := 0; i < n; i++ {
		c := freshCandidate(fmt.Sprintf("item-%d", i), fmt.Sprintf("author-%d", i%25), float64(1+i%40))
		c.CreatedAt = testNow.Add(-time.Duration(i%48) * time.Hour)
		store.Add(c)
	}
	return store
}

func newTestService(t *testing.T, cfg ServiceConfig) *Service {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = silentLogger()
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return testNow }
	}
	svc, err := NewService(cfg)
	if err != nil {
		t.Fatalf("NewService() error: %v", err)
	}
	return svc
}

func TestNewServiceRejectsInvalidTable(t *testing.T) {
	bad := RollTable{
		Authenticated: []RollRange{{Lo: 0, Hi: 50, Pool: PoolRandom}},
		Anonymous:     DefaultRollTable().Anonymous,
	}
	_, err := NewService(ServiceConfig{Candidates: seedStore(1), Table: &bad})
	if err == nil {
		t.Fatal("NewService accepted a roll table that does not partition the roll space")
	}
}

func TestGenerateFeedInputValidation(t *testing.T) {
	svc := newTestService(t, ServiceConfig{
		Candidates: seedStore(10),
		Rand:       rand.New(rand.NewSource(1)),
	})

	tests := []struct {
		name      string
		slotCount int
		cursor    string
		wantErr   error
	}{
		{name: "zero slots", slotCount: 0, wantErr: ErrInvalidSlotCount},
		{name: "negative slots", slotCount: -3, wantErr: ErrInvalidSlotCount},
		{name: "garbage cursor", slotCount: 5, cursor: "!!not-a-cursor!!", wantErr: ErrInvalidCursor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GenerateFeed(context.Background(), "user-1", tt.slotCount, tt.cursor)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("GenerateFeed error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestGenerateFeedNoDuplicates requests the entire universe and verifies
// every item appears exactly once with contiguous positions.
func TestGenerateFeedNoDuplicates(t *testing.T) {
	svc := newTestService(t, ServiceConfig{
		Candidates: seedStore(30),
		Rand:       rand.New(rand.NewSource(2)),
	})

	result, err := svc.GenerateFeed(context.Background(), "user-1", 30, "")
	if err != nil {
		t.Fatalf("GenerateFeed() error: %v", err)
	}
	if len(result.Slots) != 30 {
		t.Fatalf("served %d slots, want 30", len(result.Slots))
	}

	seen := make(map[string]struct{}, len(result.Slots))
	for i, slot := range result.Slots {
		if slot.Position != i {
			t.Errorf("slot %d has position %d, want %d", i, slot.Position, i)
		}
		if _, dup := seen[slot.ItemID]; dup {
			t.Errorf("item %s served more than once", slot.ItemID)
		}
		seen[slot.ItemID] = struct{}{}
		switch slot.Pool {
		case PoolRandom, PoolTrending, PoolPersonalized:
		default:
			t.Errorf("slot %d carries unknown pool %q", i, slot.Pool)
		}
	}
}

// TestGenerateFeedShortfall verifies a universe smaller than the request
// yields a shorter result, never padding or duplicates.
func TestGenerateFeedShortfall(t *testing.T) {
	svc := newTestService(t, ServiceConfig{
		Candidates: seedStore(3),
		Rand:       rand.New(rand.NewSource(3)),
	})

	result, err := svc.GenerateFeed(context.Background(), "user-1", 5, "")
	if err != nil {
		t.Fatalf("GenerateFeed() error: %v", err)
	}
	if len(result.Slots) != 3 {
		t.Fatalf("served %d slots, want 3", len(result.Slots))
	}
	for i, slot := range result.Slots {
		if slot.Position != i {
			t.Errorf("slot %d has position %d, want contiguous numbering", i, slot.Position)
		}
	}
	if result.NextCursor == "" {
		t.Error("shortfall result carries no cursor")
	}
}

// TestGenerateFeedDeterministic verifies identical seeds and inputs yield
// identical feeds.
func TestGenerateFeedDeterministic(t *testing.T) {
	store := seedStore(100)

	run := func(seed int64) *Result {
		svc := newTestService(t, ServiceConfig{
			Candidates: store,
			Rand:       rand.New(rand.NewSource(seed)),
		})
		result, err := svc.GenerateFeed(context.Background(), "user-1", 20, "")
		if err != nil {
			t.Fatalf("GenerateFeed() error: %v", err)
		}
		return result
	}

	a, b := run(11), run(11)
	if len(a.Slots) != len(b.Slots) {
		t.Fatalf("slot counts differ: %d vs %d", len(a.Slots), len(b.Slots))
	}
	for i := range a.Slots {
		if a.Slots[i] != b.Slots[i] {
			t.Errorf("slot %d differs: %+v vs %+v", i, a.Slots[i], b.Slots[i])
		}
	}
	if a.NextCursor != b.NextCursor {
		t.Error("cursors differ between identically seeded runs")
	}
}

// TestGenerateFeedEmptyOnStoreFailure verifies candidate store failure
// degrades to an empty result without an error.
func TestGenerateFeedEmptyOnStoreFailure(t *testing.T) {
	svc := newTestService(t, ServiceConfig{
		Candidates: failingStore{},
		Rand:       rand.New(rand.NewSource(4)),
	})

	result, err := svc.GenerateFeed(context.Background(), "user-1", 10, "")
	if err != nil {
		t.Fatalf("GenerateFeed() error = %v, want graceful empty result", err)
	}
	if len(result.Slots) != 0 {
		t.Errorf("served %d slots from a failing store, want 0", len(result.Slots))
	}
	if result.NextCursor != "" {
		t.Errorf("empty result carries cursor %q, want none", result.NextCursor)
	}
}

// TestGenerateFeedCursorExcludesServed pages through a small universe and
// verifies the second page repeats nothing from the first.
func TestGenerateFeedCursorExcludesServed(t *testing.T) {
	svc := newTestService(t, ServiceConfig{
		Candidates: seedStore(6),
		Rand:       rand.New(rand.NewSource(5)),
	})

	first, err := svc.GenerateFeed(context.Background(), "user-1", 3, "")
	if err != nil {
		t.Fatalf("first page error: %v", err)
	}
	second, err := svc.GenerateFeed(context.Background(), "user-1", 3, first.NextCursor)
	if err != nil {
		t.Fatalf("second page error: %v", err)
	}

	if len(first.Slots) != 3 || len(second.Slots) != 3 {
		t.Fatalf("page sizes = %d and %d, want 3 and 3", len(first.Slots), len(second.Slots))
	}

	served := make(map[string]struct{})
	for _, slot := range first.Slots {
		served[slot.ItemID] = struct{}{}
	}
	for _, slot := range second.Slots {
		if _, dup := served[slot.ItemID]; dup {
			t.Errorf("item %s appeared on both pages", slot.ItemID)
		}
		served[slot.ItemID] = struct{}{}
	}
	if len(served) != 6 {
		t.Errorf("two pages served %d distinct items, want 6", len(served))
	}

	third, err := svc.GenerateFeed(context.Background(), "user-1", 3, second.NextCursor)
	if err != nil {
		t.Fatalf("third page error: %v", err)
	}
	if len(third.Slots) != 0 {
		t.Errorf("exhausted universe served %d more slots, want 0", len(third.Slots))
	}
}

// TestGenerateFeedPoolDistribution verifies realized pool provenance tracks
// the roll table shares when no pool exhausts.
func TestGenerateFeedPoolDistribution(t *testing.T) {
	svc := newTestService(t, ServiceConfig{
		Candidates: seedStore(2000),
		Rand:       rand.New(rand.NewSource(6)),
	})

	result, err := svc.GenerateFeed(context.Background(), "user-1", 500, "")
	if err != nil {
		t.Fatalf("GenerateFeed() error: %v", err)
	}
	if len(result.Slots) != 500 {
		t.Fatalf("served %d slots, want 500", len(result.Slots))
	}

	counts := make(map[Pool]int)
	for _, slot := range result.Slots {
		counts[slot.Pool]++
	}

	expected := map[Pool]float64{
		PoolRandom:       0.10,
		PoolTrending:     0.10,
		PoolPersonalized: 0.80,
	}
	for pool, want := range expected {
		got := float64(counts[pool]) / float64(len(result.Slots))
		if math.Abs(got-want) > 0.05 {
			t.Errorf("pool %s share = %.3f, want %.2f ±0.05", pool, got, want)
		}
	}
}

// TestGenerateFeedAnonymous verifies anonymous requesters never receive
// personalized-pool slots.
func TestGenerateFeedAnonymous(t *testing.T) {
	svc := newTestService(t, ServiceConfig{
		Candidates: seedStore(200),
		Rand:       rand.New(rand.NewSource(7)),
	})

	result, err := svc.GenerateFeed(context.Background(), "", 100, "")
	if err != nil {
		t.Fatalf("GenerateFeed() error: %v", err)
	}
	if len(result.Slots) != 100 {
		t.Fatalf("served %d slots, want 100", len(result.Slots))
	}
	for _, slot := range result.Slots {
		if slot.Pool == PoolPersonalized {
			t.Errorf("anonymous feed served item %s from the personalized pool", slot.ItemID)
		}
	}
}

// TestGenerateFeedAppliesNegativeFilter verifies blocked and muted authors
// never appear in the result.
func TestGenerateFeedAppliesNegativeFilter(t *testing.T) {
	store := candidate.NewInMemoryStore()
	for i := 0; i < 10; i++ {
		store.Add(freshCandidate(fmt.Sprintf("item-ok-%d", i), "author-ok", 10))
	}
	for i := 0; i < 10; i++ {
		store.Add(freshCandidate(fmt.Sprintf("item-blocked-%d", i), "author-blocked", 1000))
	}
	for i := 0; i < 10; i++ {
		store.Add(freshCandidate(fmt.Sprintf("item-muted-%d", i), "author-muted", 1000))
	}

	negatives := &stubNegativeStore{
		mutes:  []social.Mute{{MuterID: "user-1", MutedID: "author-muted"}},
		blocks: []social.Block{{BlockerID: "author-blocked", BlockedID: "user-1"}},
	}
	svc := newTestService(t, ServiceConfig{
		Candidates: store,
		Filter:     NewNegativeFilter(negatives, silentLogger()),
		Rand:       rand.New(rand.NewSource(8)),
	})

	result, err := svc.GenerateFeed(context.Background(), "user-1", 30, "")
	if err != nil {
		t.Fatalf("GenerateFeed() error: %v", err)
	}
	if len(result.Slots) != 10 {
		t.Fatalf("served %d slots, want only the 10 visible items", len(result.Slots))
	}
	for _, slot := range result.Slots {
		if got, _ := fmt.Sscanf(slot.ItemID, "item-ok-%d", new(int)); got != 1 {
			t.Errorf("served hidden item %s", slot.ItemID)
		}
	}
}
