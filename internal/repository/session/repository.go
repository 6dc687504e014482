package session

import (
	"context"
)

// Repository is the per-session slot holding one serialized cart. Callers
// cannot distinguish "no slot" from "empty cart"; both read as absent.
type Repository interface {
	// Get returns the stored payload for sessionID, or domain.ErrNotFound
	// when no slot exists or the slot has expired.
	Get(ctx context.Context, sessionID string) ([]byte, error)
	// Put stores payload for sessionID, replacing any prior value and
	// refreshing the slot's expiry.
	Put(ctx context.Context, sessionID string, payload []byte) error
	// Delete removes the slot. Deleting an absent slot is not an error.
	Delete(ctx context.Context, sessionID string) error
}
