// Package feed implements personalized feed generation: per-slot pool
// rolling, pool candidate selection, negative-signal filtering,
// deduplication with fallback, and final assembly.
package feed

import (
	"fmt"
	"math/rand"
	"sync"
)

// Pool identifies one of the three candidate ranking strategies.
type Pool string

const (
	PoolRandom       Pool = "random"
	PoolTrending     Pool = "trending"
	PoolPersonalized Pool = "personalized"
)

// RollBound is the exclusive upper bound for slot rolls; rolls are uniform
// integers in [0, RollBound).
const RollBound = 100

// fallbackOrder is the fixed pool cascade tried when a slot's rolled pool
// is exhausted. The pool already tried is skipped.
var fallbackOrder = []Pool{PoolPersonalized, PoolTrending, PoolRandom}

// RollRange maps an inclusive roll interval to a pool.
type RollRange struct {
	Lo   int  `json:"lo"`
	Hi   int  `json:"hi"`
	Pool Pool `json:"pool"`
}

// RollTable maps rolls to pools per requester authentication state.
// Each state's ranges must partition [0, RollBound) exactly: authenticated
// requesters roll 10% random / 10% trending / 80% personalized, anonymous
// requesters 30% random / 70% trending.
type RollTable struct {
	Authenticated []RollRange `json:"authenticated"`
	Anonymous     []RollRange `json:"anonymous"`
}

// DefaultRollTable returns the standard pool share table.
func DefaultRollTable() RollTable {
	return RollTable{
		Authenticated: []RollRange{
			{Lo: 0, Hi: 9, Pool: PoolRandom},
			{Lo: 10, Hi: 19, Pool: PoolTrending},
			{Lo: 20, Hi: 99, Pool: PoolPersonalized},
		},
		Anonymous: []RollRange{
			{Lo: 0, Hi: 29, Pool: PoolRandom},
			{Lo: 30, Hi: 99, Pool: PoolTrending},
		},
	}
}

// Validate checks that both range sets partition [0, RollBound) exactly:
// contiguous, non-overlapping, starting at 0 and ending at RollBound-1.
func (t RollTable) Validate() error {
	if err := validateRanges("authenticated", t.Authenticated); err != nil {
		return err
	}
	return validateRanges("anonymous", t.Anonymous)
}

func validateRanges(state string, ranges []RollRange) error {
	if len(ranges) == 0 {
		return fmt.Errorf("%s roll ranges are empty", state)
	}
	next := 0
	for i, r := range ranges {
		if r.Lo != next {
			return fmt.Errorf("%s roll range %d starts at %d, want %d", state, i, r.Lo, next)
		}
		if r.Hi < r.Lo {
			return fmt.Errorf("%s roll range %d is inverted (%d-%d)", state, i, r.Lo, r.Hi)
		}
		switch r.Pool {
		case PoolRandom, PoolTrending, PoolPersonalized:
		default:
			return fmt.Errorf("%s roll range %d names unknown pool %q", state, i, r.Pool)
		}
		next = r.Hi + 1
	}
	if next != RollBound {
		return fmt.Errorf("%s roll ranges end at %d, want %d", state, next-1, RollBound-1)
	}
	return nil
}

// PoolForRoll maps a roll to its pool for the given requester state.
// Pure function of (roll, authenticated); rolls outside [0, RollBound)
// clamp into range rather than panicking.
func (t RollTable) PoolForRoll(roll int, authenticated bool) Pool {
	if roll < 0 {
		roll = 0
	}
	if roll >= RollBound {
		roll = RollBound - 1
	}
	ranges := t.Anonymous
	if authenticated {
		ranges = t.Authenticated
	}
	for _, r := range ranges {
		if roll >= r.Lo && roll <= r.Hi {
			return r.Pool
		}
	}
	// Unreachable for a validated table.
	return PoolRandom
}

// lockedRand serializes access to a rand.Rand so concurrent feed requests
// can share one seeded source. math/rand sources are not safe for
// concurrent use.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}
