package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/auth"
	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/feed"
	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/middleware"
)

// Slot count bounds for a single feed request.
const (
	DefaultSlotCount = 20
	MaxSlotCount     = 100
)

// FeedHandlers serves the feed endpoint.
type FeedHandlers struct {
	service *feed.Service
	jwt     *auth.JWTService
	logger  *slog.Logger
}

// NewFeedHandlers creates the feed handler. A nil jwt service means every
// request is treated as anonymous.
func NewFeedHandlers(service *feed.Service, jwt *auth.JWTService, logger *slog.Logger) *FeedHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedHandlers{service: service, jwt: jwt, logger: logger}
}

// FeedResponse is the JSON body for GET /feed.
type FeedResponse struct {
	Items      []feed.Slot `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// GetFeed handles GET /feed?slots=N&cursor=TOKEN.
//
// Identity comes from an optional Authorization bearer token; a missing or
// invalid token downgrades the request to anonymous rather than rejecting
// it, since the feed is publicly browsable.
func (h *FeedHandlers) GetFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	slotCount := DefaultSlotCount
	if raw := r.URL.Query().Get("slots"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeInvalidSlotCount)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidSlotCount,
				"slots must be a positive integer")
			return
		}
		if n > MaxSlotCount {
			n = MaxSlotCount
		}
		slotCount = n
	}

	requesterID := h.requesterID(r)

	result, err := h.service.GenerateFeed(r.Context(), requesterID, slotCount, r.URL.Query().Get("cursor"))
	if err != nil {
		switch {
		case errors.Is(err, feed.ErrInvalidCursor):
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeInvalidCursor)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidCursor, "Malformed cursor")
		case errors.Is(err, feed.ErrInvalidSlotCount):
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeInvalidSlotCount)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidSlotCount,
				"slots must be a positive integer")
		default:
			h.logger.ErrorContext(r.Context(), "feed generation failed", "error", err)
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
			WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Internal server error")
		}
		return
	}

	response := FeedResponse{
		Items:      result.Slots,
		NextCursor: result.NextCursor,
	}
	if response.Items == nil {
		response.Items = []feed.Slot{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to encode feed response", "error", err)
	}
}

// requesterID extracts the authenticated user, preferring the identity the
// Authenticate middleware stored in the context, falling back to parsing
// the bearer token directly. Empty string means anonymous.
func (h *FeedHandlers) requesterID(r *http.Request) string {
	if userID := middleware.GetUserID(r.Context()); userID != "" {
		return userID
	}
	return bearerSubject(h.jwt, r, h.logger)
}
