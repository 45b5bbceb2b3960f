package candidate

import (
	"context"
	"testing"
	"time"
)

// TestInMemoryStoreCopyOut verifies callers own the returned slice.
func TestInMemoryStoreCopyOut(t *testing.T) {
	store := NewInMemoryStore()
	store.Add(Candidate{ID: "c1", AuthorID: "a1", CreatedAt: time.Now()})

	got, err := store.EligibleCandidates(context.Background())
	if err != nil {
		t.Fatalf("EligibleCandidates returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}

	// Mutating the returned slice must not affect the store.
	got[0].ID = "mutated"

	again, err := store.EligibleCandidates(context.Background())
	if err != nil {
		t.Fatalf("EligibleCandidates returned error: %v", err)
	}
	if again[0].ID != "c1" {
		t.Errorf("store candidate ID = %q, want c1", again[0].ID)
	}
}

// TestInMemoryStoreReplace verifies Replace swaps the whole set.
func TestInMemoryStoreReplace(t *testing.T) {
	store := NewInMemoryStore()
	store.Add(Candidate{ID: "old"})

	store.Replace([]Candidate{{ID: "new1"}, {ID: "new2"}})

	got, err := store.EligibleCandidates(context.Background())
	if err != nil {
		t.Fatalf("EligibleCandidates returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if got[0].ID != "new1" || got[1].ID != "new2" {
		t.Errorf("unexpected candidates after replace: %+v", got)
	}
}

// TestCandidateHasTopic tests topic membership checks.
func TestCandidateHasTopic(t *testing.T) {
	c := Candidate{Topics: []string{"civic", "environment"}}

	if !c.HasTopic("civic") {
		t.Error("expected HasTopic(civic) to be true")
	}
	if c.HasTopic("sports") {
		t.Error("expected HasTopic(sports) to be false")
	}

	var empty Candidate
	if empty.HasTopic("civic") {
		t.Error("expected HasTopic on empty candidate to be false")
	}
}

// TestCandidateAge tests age computation.
func TestCandidateAge(t *testing.T) {
	now := time.Now()
	c := Candidate{CreatedAt: now.Add(-3 * time.Hour)}
	if age := c.Age(now); age != 3*time.Hour {
		t.Errorf("Age = %v, want 3h", age)
	}
}
