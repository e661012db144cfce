package repository

import "context"

// ProfileDirectory resolves user ids to display names. Used only for
// presentation; lookup failures are non-fatal and callers fall back to the
// raw id.
type ProfileDirectory interface {
	// DisplayName returns the display name for userID.
	// Returns errs.ErrNotFound when the user has no profile entry.
	DisplayName(ctx context.Context, userID string) (string, error)

	// Upsert stores or replaces a profile entry.
	Upsert(ctx context.Context, userID, displayName string) error
}
