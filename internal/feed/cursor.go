package feed

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ErrInvalidCursor is returned when a pagination token cannot be decoded.
var ErrInvalidCursor = errors.New("malformed cursor")

// MaxCursorItems bounds how many served item IDs a cursor carries; the
// oldest entries are dropped first once the bound is hit.
const MaxCursorItems = 500

// Cursor is the opaque pagination token. It records the item IDs already
// served in this browsing session so subsequent pages exclude them.
// Encoded as CBOR wrapped in unpadded base64url.
type Cursor struct {
	Served []string `cbor:"served"`
}

// DecodeCursor parses an encoded cursor. An empty string yields an empty
// cursor; any undecodable token is ErrInvalidCursor.
func DecodeCursor(raw string) (*Cursor, error) {
	if raw == "" {
		return &Cursor{}, nil
	}

	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	var c Cursor
	if err := cbor.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if len(c.Served) > MaxCursorItems {
		c.Served = c.Served[len(c.Served)-MaxCursorItems:]
	}
	return &c, nil
}

// Encode serializes the cursor. An empty cursor encodes to the empty string.
func (c *Cursor) Encode() (string, error) {
	if c == nil || len(c.Served) == 0 {
		return "", nil
	}
	data, err := cbor.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Append records newly served item IDs, dropping the oldest once
// MaxCursorItems is exceeded.
func (c *Cursor) Append(ids ...string) {
	c.Served = append(c.Served, ids...)
	if len(c.Served) > MaxCursorItems {
		c.Served = c.Served[len(c.Served)-MaxCursorItems:]
	}
}

// Exclusions returns the served set as a lookup map.
func (c *Cursor) Exclusions() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Served))
	for _, id := range c.Served {
		set[id] = struct{}{}
	}
	return set
}
