package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dkorovin/tagproof/internal/errs"
	"github.com/dkorovin/tagproof/internal/ledger"
	"github.com/dkorovin/tagproof/internal/model"
	"github.com/dkorovin/tagproof/internal/permit"
	"github.com/dkorovin/tagproof/internal/repository"
	"github.com/dkorovin/tagproof/internal/tag"
)

// TransferService drives the two-factor transfer flow: tap, code, execute.
type TransferService interface {
	// NotifyTagScanned records physical proximity for the scanned asset and
	// forwards the raw scan to the ledger (best effort).
	NotifyTagScanned(ctx context.Context, userID string, scan ledger.TagScan) (*model.TagProcessResult, error)

	// InitiateTransfer issues a fresh confirmation code for the asset.
	InitiateTransfer(ctx context.Context, assetID string) (string, error)

	// ConfirmCode validates the presented code and opens the code window.
	ConfirmCode(assetID, code string) error

	// AuthorizationRemaining reports how long the combined window stays open.
	AuthorizationRemaining(assetID string) time.Duration

	// ExecuteTransfer re-checks authorization at the instant of execution,
	// performs the ledger transfer, and revokes the window on every exit path.
	ExecuteTransfer(ctx context.Context, assetID, fromUserID, toUserID string) (string, error)
}

type TransferServiceImpl struct {
	ledger   ledger.Client
	cache    repository.AssetCache
	authz    *permit.Manager
	physical *permit.ProximityVerifier
	codes    *permit.CodeVerifier
	log      *zap.Logger
}

// NewTransferService constructs a transfer service with injected verifiers.
func NewTransferService(
	lc ledger.Client,
	cache repository.AssetCache,
	authz *permit.Manager,
	physical *permit.ProximityVerifier,
	codes *permit.CodeVerifier,
	log *zap.Logger,
) *TransferServiceImpl {
	return &TransferServiceImpl{
		ledger: lc, cache: cache, authz: authz, physical: physical, codes: codes, log: log,
	}
}

// NotifyTagScanned is the public API for the platform tag-intent handler.
func (s *TransferServiceImpl) NotifyTagScanned(ctx context.Context, userID string, scan ledger.TagScan) (*model.TagProcessResult, error) {
	assetID, err := tag.ExtractAssetID(scan.NDEFMessage)
	if err != nil {
		return nil, err
	}
	s.physical.RecordTap(assetID)

	scan.TagID = assetID
	scan.UserID = userID
	if scan.Timestamp == 0 {
		scan.Timestamp = time.Now().Unix()
	}
	msg, err := s.ledger.ProcessTag(ctx, scan)
	if err != nil {
		// The tap evidence stands on its own; the forward is best effort.
		s.log.Warn("process tag forward failed", zap.String("asset", assetID), zap.Error(err))
		msg = "recorded locally"
	}
	return &model.TagProcessResult{AssetID: assetID, Message: msg}, nil
}

// InitiateTransfer issues a confirmation code for an asset known locally.
func (s *TransferServiceImpl) InitiateTransfer(ctx context.Context, assetID string) (string, error) {
	if assetID == "" {
		return "", errors.New("validation: empty asset id")
	}
	if _, err := s.cache.Get(ctx, assetID); err != nil {
		return "", fmt.Errorf("initiate transfer %s: %w", assetID, err)
	}
	return s.codes.Issue(assetID)
}

// ConfirmCode opens the code half of the authorization window.
func (s *TransferServiceImpl) ConfirmCode(assetID, code string) error {
	return s.codes.Confirm(assetID, code)
}

// AuthorizationRemaining reports the combined remaining window.
func (s *TransferServiceImpl) AuthorizationRemaining(assetID string) time.Duration {
	return s.authz.Remaining(assetID)
}

// ExecuteTransfer performs the ownership transfer on the ledger. Authorization
// is re-checked here, not cached from an earlier answer, to close the gap a
// long-running call would otherwise open.
func (s *TransferServiceImpl) ExecuteTransfer(ctx context.Context, assetID, fromUserID, toUserID string) (msg string, err error) {
	if assetID == "" || fromUserID == "" || toUserID == "" {
		return "", errors.New("validation: empty asset/from/to")
	}
	if fromUserID == toUserID {
		return "", errors.New("validation: transfer to self")
	}
	if !s.authz.Authorized(assetID) {
		return "", fmt.Errorf("transfer %s: %w", assetID, errs.ErrNotAuthorized)
	}

	// Completed or failed, the window must not stay open.
	defer s.authz.Revoke(assetID)

	msg, err = s.ledger.TransferAsset(ctx, assetID, fromUserID, toUserID)
	if err != nil {
		return "", err
	}

	// Refresh the local projection; the ledger already holds the truth.
	if a, gerr := s.cache.Get(ctx, assetID); gerr == nil {
		a.CurrentOwner = toUserID
		if uerr := s.cache.Update(ctx, a); uerr != nil {
			s.log.Warn("cache sync failed after transfer", zap.String("asset", assetID),
				zap.Error(errors.Join(errs.ErrSyncFailed, uerr)))
		}
	}
	return msg, nil
}
