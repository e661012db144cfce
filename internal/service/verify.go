package service

import (
	"context"

	"github.com/dkorovin/tagproof/internal/model"
	"github.com/dkorovin/tagproof/internal/tag"
)

// VerificationService is the single entry point for authenticating a scanned
// tag end to end.
type VerificationService interface {
	// Verify extracts the asset id from a raw tag payload and reconciles it
	// against the ledger. Returns errs.ErrMalformedTag when no id can be
	// extracted; every other failure mode degrades to Authentic=false.
	Verify(ctx context.Context, rawTag string) (*model.VerificationResult, error)
}

type VerificationServiceImpl struct {
	rec *Reconciler
}

// NewVerificationService constructs the verification orchestrator.
func NewVerificationService(rec *Reconciler) *VerificationServiceImpl {
	return &VerificationServiceImpl{rec: rec}
}

// Verify runs extract -> reconcile.
func (s *VerificationServiceImpl) Verify(ctx context.Context, rawTag string) (*model.VerificationResult, error) {
	assetID, err := tag.ExtractAssetID(rawTag)
	if err != nil {
		return nil, err
	}
	return s.rec.Reconcile(ctx, assetID)
}
