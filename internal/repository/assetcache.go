// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/dkorovin/tagproof/internal/model"
)

// AssetCache is the local mutable projection of assets, keyed by asset id.
// It is a cache, not a source of truth: reconciliation overwrites its
// authoritative fields wholesale from ledger data.
type AssetCache interface {
	// Get loads an asset by id. Returns errs.ErrNotFound when absent.
	Get(ctx context.Context, id string) (*model.Asset, error)

	// Create inserts a new asset projection.
	Create(ctx context.Context, a *model.Asset) error

	// Update rewrites an existing asset projection.
	Update(ctx context.Context, a *model.Asset) error

	// ForceSync upserts an asset derived from fresh ledger data, replacing
	// any stale local row. Best-effort from the caller's point of view.
	ForceSync(ctx context.Context, a *model.Asset) error
}
