package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dkorovin/tagproof/internal/errs"
	"github.com/dkorovin/tagproof/internal/ledger"
	"github.com/dkorovin/tagproof/internal/model"
	"github.com/dkorovin/tagproof/internal/repository"
)

// AssetService covers the manufacturer-side lifecycle: registering assets and
// reading back projections, histories, and per-user holdings.
type AssetService interface {
	// Register persists the local projection and records the asset on the
	// ledger. The ledger call is never auto-retried; on failure the local row
	// stays unregistered and the caller decides whether to re-invoke.
	Register(ctx context.Context, a *model.Asset, ownerID string) (string, error)
	// Get loads the local projection by id.
	Get(ctx context.Context, id string) (*model.Asset, error)
	// History returns the asset's ledger ownership trail.
	History(ctx context.Context, id string) ([]model.OwnershipRecord, error)
	// Owned lists asset ids held by the user (best-effort display data).
	Owned(ctx context.Context, userID string) ([]string, error)
	// Balance returns the user's ledger balance (best-effort display data).
	Balance(ctx context.Context, userID string) (float64, error)
}

type AssetServiceImpl struct {
	ledger ledger.Client
	cache  repository.AssetCache
	log    *zap.Logger
}

// NewAssetService constructs an asset service.
func NewAssetService(lc ledger.Client, cache repository.AssetCache, log *zap.Logger) *AssetServiceImpl {
	return &AssetServiceImpl{ledger: lc, cache: cache, log: log}
}

// Register creates the local row first, then registers on the ledger.
func (s *AssetServiceImpl) Register(ctx context.Context, a *model.Asset, ownerID string) (string, error) {
	if a == nil || a.ID == "" || a.Name == "" {
		return "", errors.New("validation: asset id and name required")
	}
	if ownerID == "" {
		return "", errors.New("validation: empty owner id")
	}
	a.CurrentOwner = ownerID
	a.Manufacturer = ownerID
	a.RegisteredOnLedger = false
	if err := s.cache.Create(ctx, a); err != nil {
		return "", fmt.Errorf("register %s: %w", a.ID, err)
	}

	data := map[string]string{
		"name":         a.Name,
		"description":  a.Description,
		"category":     a.Category,
		"manufacturer": a.ManufacturerName,
		"image_url":    a.ImageURL,
	}
	for k, v := range a.Properties {
		if _, taken := data[k]; !taken {
			data[k] = v
		}
	}

	msg, err := s.ledger.RegisterAsset(ctx, a.ID, ownerID, data)
	if err != nil {
		// Local row stays with RegisteredOnLedger=false; re-registration is a
		// deliberate caller action after checking the first attempt's outcome.
		return "", err
	}

	a.RegisteredOnLedger = true
	if uerr := s.cache.Update(ctx, a); uerr != nil {
		s.log.Warn("cache sync failed after register", zap.String("asset", a.ID),
			zap.Error(errors.Join(errs.ErrSyncFailed, uerr)))
	}
	return msg, nil
}

// Get loads the local projection.
func (s *AssetServiceImpl) Get(ctx context.Context, id string) (*model.Asset, error) {
	if id == "" {
		return nil, errors.New("validation: empty asset id")
	}
	return s.cache.Get(ctx, id)
}

// History proxies the ledger's ownership trail.
func (s *AssetServiceImpl) History(ctx context.Context, id string) ([]model.OwnershipRecord, error) {
	if id == "" {
		return nil, errors.New("validation: empty asset id")
	}
	return s.ledger.AssetHistory(ctx, id)
}

// Owned proxies the ledger's per-user asset list.
func (s *AssetServiceImpl) Owned(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, errors.New("validation: empty user id")
	}
	return s.ledger.UserAssets(ctx, userID)
}

// Balance proxies the ledger's per-user balance.
func (s *AssetServiceImpl) Balance(ctx context.Context, userID string) (float64, error) {
	if userID == "" {
		return 0, errors.New("validation: empty user id")
	}
	return s.ledger.UserBalance(ctx, userID)
}
