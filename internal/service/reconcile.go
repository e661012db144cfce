// Package service contains application services for verification, transfer
// authorization, and asset registration.
package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/dkorovin/tagproof/internal/errs"
	"github.com/dkorovin/tagproof/internal/ledger"
	"github.com/dkorovin/tagproof/internal/model"
	"github.com/dkorovin/tagproof/internal/permit"
	"github.com/dkorovin/tagproof/internal/repository"
)

// Reconciler decides whether the local cached record of an asset is
// authoritative or must be re-derived from the ledger, and performs that
// resync. The ledger is the source of truth; the cache is a projection.
type Reconciler struct {
	ledger   ledger.Client
	cache    repository.AssetCache
	profiles repository.ProfileDirectory
	physical *permit.ProximityVerifier
	log      *zap.Logger
}

// NewReconciler constructs a reconciler with injected collaborators.
func NewReconciler(
	lc ledger.Client,
	cache repository.AssetCache,
	profiles repository.ProfileDirectory,
	physical *permit.ProximityVerifier,
	log *zap.Logger,
) *Reconciler {
	return &Reconciler{ledger: lc, cache: cache, profiles: profiles, physical: physical, log: log}
}

// ownershipSummary is what the ledger history proves about an asset.
type ownershipSummary struct {
	registered       bool
	registrationDate string
	previousOwners   int
	lastTransferDate string
	ownerID          string
}

// summarize folds a timestamp-ascending history into derived ownership fields.
func summarize(history []model.OwnershipRecord) ownershipSummary {
	s := ownershipSummary{lastTransferDate: model.NoTransferDate}
	for _, rec := range history {
		switch rec.Action {
		case model.ActionRegister:
			if !s.registered {
				s.registered = true
				s.registrationDate = rec.Time().Format(model.TimestampLayout)
			}
		case model.ActionTransfer:
			s.previousOwners++
			s.lastTransferDate = rec.Time().Format(model.TimestampLayout)
		}
	}
	if len(history) > 0 {
		s.ownerID = history[len(history)-1].UserID
	}
	return s
}

// Reconcile verifies an asset id against the ledger and returns a result that
// is always well-formed: read failures degrade to Authentic=false rather than
// erroring out, so authenticity fails closed.
func (r *Reconciler) Reconcile(ctx context.Context, assetID string) (*model.VerificationResult, error) {
	a, err := r.cache.Get(ctx, assetID)
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			r.log.Warn("cache read failed, falling back to ledger",
				zap.String("asset", assetID), zap.Error(err))
		}
		return r.discover(ctx, assetID), nil
	}
	return r.verifyKnown(ctx, a), nil
}

// verifyKnown handles the local-hit path: the cache knows the asset, the
// ledger must still confirm a register action for it.
func (r *Reconciler) verifyKnown(ctx context.Context, a *model.Asset) *model.VerificationResult {
	res := &model.VerificationResult{
		AssetID:      a.ID,
		ProductName:  a.Name,
		Category:     a.Category,
		Manufacturer: a.ManufacturerName,
		Properties:   a.Properties,
	}

	history, err := r.ledger.AssetHistory(ctx, a.ID)
	if err != nil {
		// Known identity, unconfirmed trust. Never authentic on a degraded network.
		r.log.Warn("history fetch failed", zap.String("asset", a.ID), zap.Error(err))
		res.CurrentOwner = a.CurrentOwner
		return res
	}
	sum := summarize(history)
	if !sum.registered {
		res.OwnershipHistory = history
		res.CurrentOwner = a.CurrentOwner
		return res
	}

	// Ledger-derived fields win over the cached projection.
	res.Authentic = true
	res.RegistrationDate = sum.registrationDate
	res.PreviousOwners = sum.previousOwners
	res.LastTransferDate = sum.lastTransferDate
	res.OwnershipHistory = history
	res.CurrentOwner = r.resolveOwner(ctx, sum.ownerID)

	r.syncProjection(ctx, a, sum.ownerID)
	r.physical.RecordTap(a.ID)
	return res
}

// discover handles the local-miss path: the ledger may still know the asset.
func (r *Reconciler) discover(ctx context.Context, assetID string) *model.VerificationResult {
	res := &model.VerificationResult{
		AssetID:     assetID,
		ProductName: model.UnknownProduct,
		Category:    model.UnknownCategory,
	}

	history, err := r.ledger.AssetHistory(ctx, assetID)
	if err != nil {
		r.log.Warn("history fetch failed", zap.String("asset", assetID), zap.Error(err))
		return res
	}
	sum := summarize(history)
	if !sum.registered {
		return res
	}
	data, err := r.ledger.AssetNodeData(ctx, assetID)
	if err != nil {
		r.log.Warn("node data fetch failed", zap.String("asset", assetID), zap.Error(err))
		return res
	}

	a := synthesize(assetID, data, sum.ownerID)
	if err := r.cache.ForceSync(ctx, a); err != nil {
		// Best effort: a failed sync never blocks the verification result.
		r.log.Warn("cache sync failed", zap.String("asset", assetID),
			zap.Error(errors.Join(errs.ErrSyncFailed, err)))
	}

	res.Authentic = true
	res.ProductName = a.Name
	res.Category = a.Category
	res.Manufacturer = a.ManufacturerName
	res.Properties = a.Properties
	res.RegistrationDate = sum.registrationDate
	res.PreviousOwners = sum.previousOwners
	res.LastTransferDate = sum.lastTransferDate
	res.OwnershipHistory = history
	res.CurrentOwner = r.resolveOwner(ctx, sum.ownerID)

	r.physical.RecordTap(assetID)
	return res
}

// synthesize builds a transient asset projection from free-form node data.
func synthesize(assetID string, data map[string]string, ownerID string) *model.Asset {
	pick := func(key, fallback string) string {
		if v, ok := data[key]; ok && v != "" {
			return v
		}
		return fallback
	}
	props := make(map[string]string, len(data))
	for k, v := range data {
		switch k {
		case "name", "category", "manufacturer", "description", "image_url":
		default:
			props[k] = v
		}
	}
	return &model.Asset{
		ID:                 assetID,
		Name:               pick("name", model.UnknownProduct),
		Description:        pick("description", ""),
		ManufacturerName:   pick("manufacturer", model.UnknownManufacturer),
		Category:           pick("category", model.UnknownCategory),
		ImageURL:           pick("image_url", ""),
		Properties:         props,
		CurrentOwner:       ownerID,
		RegisteredOnLedger: true,
	}
}

// syncProjection overwrites the cached authoritative fields wholesale from
// the freshly derived ledger view. Best effort.
func (r *Reconciler) syncProjection(ctx context.Context, a *model.Asset, ownerID string) {
	if a.CurrentOwner == ownerID && a.RegisteredOnLedger {
		return
	}
	a.CurrentOwner = ownerID
	a.RegisteredOnLedger = true
	if err := r.cache.ForceSync(ctx, a); err != nil {
		r.log.Warn("cache sync failed", zap.String("asset", a.ID),
			zap.Error(errors.Join(errs.ErrSyncFailed, err)))
	}
}

// resolveOwner maps a user id to a display name, falling back to the raw id.
func (r *Reconciler) resolveOwner(ctx context.Context, ownerID string) string {
	if ownerID == "" {
		return ""
	}
	name, err := r.profiles.DisplayName(ctx, ownerID)
	if err != nil || name == "" {
		return ownerID
	}
	return name
}
