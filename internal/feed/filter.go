package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/candidate"
	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/social"
)

// NegativeFilter removes candidates authored by muted or blocked accounts.
// It runs once per request, before any pool selector, producing the shared
// eligible set all selectors draw from.
type NegativeFilter struct {
	store  social.NegativeStore
	logger *slog.Logger
}

// NewNegativeFilter creates a negative-signal filter. A nil store disables
// filtering entirely (all candidates pass).
func NewNegativeFilter(store social.NegativeStore, logger *slog.Logger) *NegativeFilter {
	if logger == nil {
		logger = slog.Default()
	}
	return &NegativeFilter{store: store, logger: logger}
}

// Apply returns the candidates visible to the requester: blocks exclude in
// both directions permanently, mutes exclude one-way until expiry.
// Anonymous requesters (empty ID) carry no negative signals. A negative
// store failure is logged and the filter passes candidates through; the
// signal is degraded like any other upstream source.
func (f *NegativeFilter) Apply(ctx context.Context, requesterID string,
	candidates []candidate.Candidate, now time.Time) []candidate.Candidate {

	if requesterID == "" || f.store == nil || len(candidates) == 0 {
		return candidates
	}

	hidden := make(map[string]struct{})

	blocks, err := f.store.Blocks(ctx, requesterID)
	if err != nil {
		f.logger.Warn("block signals unavailable, filtering without them",
			"user_id", requesterID,
			"error", err)
	} else {
		for _, b := range blocks {
			if b.BlockerID == requesterID {
				hidden[b.BlockedID] = struct{}{}
			} else {
				hidden[b.BlockerID] = struct{}{}
			}
		}
	}

	mutes, err := f.store.Mutes(ctx, requesterID)
	if err != nil {
		f.logger.Warn("mute signals unavailable, filtering without them",
			"user_id", requesterID,
			"error", err)
	} else {
		for _, m := range mutes {
			if !m.Expired(now) {
				hidden[m.MutedID] = struct{}{}
			}
		}
	}

	if len(hidden) == 0 {
		return candidates
	}

	visible := make([]candidate.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, gone := hidden[c.AuthorID]; gone {
			continue
		}
		visible = append(visible, c)
	}
	return visible
}
