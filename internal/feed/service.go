package feed

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/candidate"
	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/profile"
	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/scoring"
)

// ErrInvalidSlotCount is returned for non-positive slot counts.
var ErrInvalidSlotCount = errors.New("slot count must be positive")

// Slot is one filled feed position with pool provenance.
type Slot struct {
	Position int    `json:"position"`
	ItemID   string `json:"item_id"`
	Pool     Pool   `json:"pool"`
}

// Result is an ordered feed response. Slots may be fewer than requested
// when the eligible universe runs out; it is never padded with duplicates
// or empty entries.
type Result struct {
	Slots      []Slot `json:"slots"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// Service assembles feeds: it rolls a pool per slot, draws a candidate
// through that pool's selector with deduplication, cascades through the
// fallback order on exhaustion, and records provenance per slot.
// Safe for concurrent use; each request only shares the seeded random
// source, which is serialized internally.
type Service struct {
	candidates candidate.Store
	profiles   *profile.Builder
	filter     *NegativeFilter

	table     RollTable
	selectors map[Pool]Selector
	rng       *lockedRand
	metrics   *Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// ServiceConfig carries the Service dependencies.
type ServiceConfig struct {
	Candidates candidate.Store
	Profiles   *profile.Builder
	Filter     *NegativeFilter
	Weights    *scoring.Weights
	Table      *RollTable // nil uses DefaultRollTable
	Metrics    *Metrics   // nil disables metrics
	Rand       *rand.Rand // nil seeds from the current time
	Logger     *slog.Logger
	Now        func() time.Time // nil uses time.Now
}

// NewService wires a feed service. Returns an error when the roll table
// does not partition the roll space.
func NewService(cfg ServiceConfig) (*Service, error) {
	table := DefaultRollTable()
	if cfg.Table != nil {
		table = *cfg.Table
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}

	weights := cfg.Weights
	if weights == nil {
		weights = scoring.DefaultWeights()
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		candidates: cfg.Candidates,
		profiles:   cfg.Profiles,
		filter:     cfg.Filter,
		table:      table,
		selectors: map[Pool]Selector{
			PoolRandom:       NewRandomSelector(weights),
			PoolTrending:     NewTrendingSelector(weights),
			PoolPersonalized: NewPersonalizedSelector(weights),
		},
		rng:     &lockedRand{rng: rng},
		metrics: cfg.Metrics,
		logger:  logger,
		now:     now,
	}, nil
}

// GenerateFeed produces an ordered feed for the requester. An empty
// requesterID means anonymous. The returned result carries at most
// slotCount slots plus a cursor excluding everything served so far.
//
// Candidate-store unavailability yields an empty result, not an error;
// only invalid input (non-positive slotCount, undecodable cursor) fails.
func (s *Service) GenerateFeed(ctx context.Context, requesterID string, slotCount int, rawCursor string) (*Result, error) {
	if slotCount <= 0 {
		return nil, ErrInvalidSlotCount
	}
	cursor, err := DecodeCursor(rawCursor)
	if err != nil {
		return nil, err
	}

	authenticated := requesterID != ""
	start := time.Now()
	defer func() {
		s.metrics.ObserveDuration(authenticated, time.Since(start))
	}()

	universe, err := s.candidates.EligibleCandidates(ctx)
	if err != nil {
		s.logger.Error("candidate store unavailable, serving empty feed",
			"requester_id", requesterID,
			"error", err)
		s.metrics.ObserveEmpty()
		return &Result{}, nil
	}

	var prof *profile.InterestProfile
	if authenticated && s.profiles != nil {
		prof = s.profiles.Profile(ctx, requesterID)
	}

	now := s.now()
	eligible := universe
	if s.filter != nil {
		eligible = s.filter.Apply(ctx, requesterID, universe, now)
	}

	excluded := cursor.Exclusions()
	result := &Result{}

	for position := 0; position < slotCount; position++ {
		rolled := s.table.PoolForRoll(s.rng.Intn(RollBound), authenticated)

		item, served, ok := s.draw(rolled, now, eligible, excluded, prof)
		if !ok {
			// Every pool is exhausted; later slots cannot succeed either.
			break
		}

		result.Slots = append(result.Slots, Slot{
			Position: len(result.Slots),
			ItemID:   item.ID,
			Pool:     served,
		})
		excluded[item.ID] = struct{}{}
		cursor.Append(item.ID)
		s.metrics.ObserveSlot(served, authenticated)
	}

	if len(result.Slots) < slotCount {
		s.logger.Info("feed shorter than requested",
			"requester_id", requesterID,
			"requested", slotCount,
			"served", len(result.Slots))
		s.metrics.ObserveShortfall()
	}

	next, err := cursor.Encode()
	if err != nil {
		// Encoding only fails on a broken CBOR encoder; serve without a cursor.
		s.logger.Error("failed to encode feed cursor", "error", err)
	} else {
		result.NextCursor = next
	}

	return result, nil
}

// draw attempts the rolled pool first, then cascades through the fallback
// order, skipping the pool already tried. Returns the drawn candidate and
// the pool that actually served it.
func (s *Service) draw(rolled Pool, now time.Time, eligible []candidate.Candidate,
	excluded map[string]struct{}, prof *profile.InterestProfile) (candidate.Candidate, Pool, bool) {

	if item, ok := s.selectors[rolled].Select(s.rng, now, eligible, excluded, prof); ok {
		return item, rolled, true
	}
	s.metrics.ObserveFallback(rolled)

	for _, pool := range fallbackOrder {
		if pool == rolled {
			continue
		}
		if item, ok := s.selectors[pool].Select(s.rng, now, eligible, excluded, prof); ok {
			return item, pool, true
		}
	}
	return candidate.Candidate{}, "", false
}
