// Package ledger is the typed HTTP client for the blockchain orchestrator,
// the source of truth for asset ownership and registration.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/dkorovin/tagproof/internal/errs"
	"github.com/dkorovin/tagproof/internal/model"
)

// Per-call deadlines. A timed-out call is a failure; only the two read-only
// history/node-data paths are retried.
const (
	healthDeadline = 5 * time.Second
	readDeadline   = 10 * time.Second
	mutateDeadline = 15 * time.Second

	// Read-path retry policy: 3 attempts total, exponential backoff.
	readRetries   = 2
	retryBase     = 500 * time.Millisecond
	retryDelayCap = 5 * time.Second
)

// Client defines the orchestrator operations used by the engine.
type Client interface {
	// Health returns a short status summary of the orchestrator node.
	Health(ctx context.Context) (string, error)
	// ProcessTag forwards a raw tag scan to the orchestrator.
	ProcessTag(ctx context.Context, scan TagScan) (string, error)
	// RegisterAsset records a new asset for a user. Never auto-retried.
	RegisterAsset(ctx context.Context, assetID, userID string, data map[string]string) (string, error)
	// TransferAsset moves ownership. Verifies ownership first and aborts with
	// ErrNotOwner before touching the transfer endpoint. Never auto-retried.
	TransferAsset(ctx context.Context, assetID, fromUserID, toUserID string) (string, error)
	// VerifyOwnership reports whether userID currently owns the asset.
	VerifyOwnership(ctx context.Context, assetID, userID string) (bool, error)
	// AssetHistory returns the ordered ownership trail. Retried (read-only).
	AssetHistory(ctx context.Context, assetID string) ([]model.OwnershipRecord, error)
	// AssetNodeData returns free-form asset data. Retried (read-only).
	AssetNodeData(ctx context.Context, assetID string) (map[string]string, error)
	// UserBalance returns the user's token balance. Best-effort display data.
	UserBalance(ctx context.Context, userID string) (float64, error)
	// UserAssets lists asset ids owned by the user. Best-effort display data.
	UserAssets(ctx context.Context, userID string) ([]string, error)
	// Stats returns chain-wide counters.
	Stats(ctx context.Context) (Stats, error)
	// VerifyIntegrity checks the chain. integrity_ok=false is an error.
	VerifyIntegrity(ctx context.Context) (bool, error)
}

// HTTPClient implements Client over the orchestrator's JSON API.
type HTTPClient struct {
	base string
	hc   *http.Client
	log  *zap.Logger

	// retryBase is lowered in tests to keep backoff assertions fast.
	retryBase time.Duration
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient constructs a client for the orchestrator at baseURL.
func NewHTTPClient(baseURL string, log *zap.Logger) *HTTPClient {
	return &HTTPClient{
		base:      baseURL,
		hc:        &http.Client{},
		log:       log,
		retryBase: retryBase,
	}
}

// do performs one JSON round trip under its own deadline and decodes into out.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any, deadline time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%s: %w", path, errs.ErrLedgerTimeout)
		}
		return fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s: unexpected status %d", path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// retryRead wraps an idempotent read with exponential backoff. Mutating calls
// must never go through here: a retried mutation on a flaky network could
// double-submit.
func (c *HTTPClient) retryRead(ctx context.Context, op func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(readRetries,
		retry.WithCappedDuration(retryDelayCap, retry.NewExponential(c.retryBase)))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		if err := op(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// mutate posts a mutating request and maps success=false to ErrLedgerRejected.
func (c *HTTPClient) mutate(ctx context.Context, path string, body any) (string, error) {
	var resp mutationResponse
	if err := c.do(ctx, http.MethodPost, path, body, &resp, mutateDeadline); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", fmt.Errorf("%s: %w: %s", path, errs.ErrLedgerRejected, resp.Message)
	}
	return resp.Message, nil
}

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp healthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp, healthDeadline); err != nil {
		return "", err
	}
	if resp.NodeID != "" {
		return fmt.Sprintf("%s (node %s)", resp.Status, resp.NodeID), nil
	}
	return resp.Status, nil
}

func (c *HTTPClient) ProcessTag(ctx context.Context, scan TagScan) (string, error) {
	return c.mutate(ctx, "/process_nfc_tag", processTagRequest{
		TagID:           scan.TagID,
		UserID:          scan.UserID,
		TagTechnologies: scan.TagTechnologies,
		NDEFMessage:     scan.NDEFMessage,
		Timestamp:       scan.Timestamp,
	})
}

func (c *HTTPClient) RegisterAsset(ctx context.Context, assetID, userID string, data map[string]string) (string, error) {
	return c.mutate(ctx, "/register_asset", registerAssetRequest{
		AssetID:   assetID,
		UserID:    userID,
		AssetData: data,
	})
}

func (c *HTTPClient) TransferAsset(ctx context.Context, assetID, fromUserID, toUserID string) (string, error) {
	owns, err := c.VerifyOwnership(ctx, assetID, fromUserID)
	if err != nil {
		return "", fmt.Errorf("transfer precondition: %w", err)
	}
	if !owns {
		return "", fmt.Errorf("transfer %s from %s: %w", assetID, fromUserID, errs.ErrNotOwner)
	}
	return c.mutate(ctx, "/transfer_asset", transferAssetRequest{
		AssetID:    assetID,
		FromUserID: fromUserID,
		ToUserID:   toUserID,
	})
}

func (c *HTTPClient) VerifyOwnership(ctx context.Context, assetID, userID string) (bool, error) {
	q := url.Values{"asset_id": {assetID}, "user_id": {userID}}
	var resp ownershipResponse
	if err := c.do(ctx, http.MethodGet, "/verify_ownership?"+q.Encode(), nil, &resp, readDeadline); err != nil {
		return false, err
	}
	return resp.IsOwner, nil
}

func (c *HTTPClient) AssetHistory(ctx context.Context, assetID string) ([]model.OwnershipRecord, error) {
	var resp historyResponse
	err := c.retryRead(ctx, func(ctx context.Context) error {
		resp = historyResponse{}
		return c.do(ctx, http.MethodGet, "/asset_history/"+url.PathEscape(assetID), nil, &resp, readDeadline)
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.OwnershipRecord, 0, len(resp.History))
	for _, e := range resp.History {
		out = append(out, e.toModel())
	}
	return out, nil
}

func (c *HTTPClient) AssetNodeData(ctx context.Context, assetID string) (map[string]string, error) {
	var resp nodeDataResponse
	err := c.retryRead(ctx, func(ctx context.Context) error {
		resp = nodeDataResponse{}
		return c.do(ctx, http.MethodGet, "/asset_data/"+url.PathEscape(assetID), nil, &resp, readDeadline)
	})
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *HTTPClient) UserBalance(ctx context.Context, userID string) (float64, error) {
	var resp balanceResponse
	if err := c.do(ctx, http.MethodGet, "/user_balance/"+url.PathEscape(userID), nil, &resp, readDeadline); err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

func (c *HTTPClient) UserAssets(ctx context.Context, userID string) ([]string, error) {
	var resp userAssetsResponse
	if err := c.do(ctx, http.MethodGet, "/user_assets/"+url.PathEscape(userID), nil, &resp, readDeadline); err != nil {
		return nil, err
	}
	return resp.Assets, nil
}

func (c *HTTPClient) Stats(ctx context.Context) (Stats, error) {
	var resp Stats
	if err := c.do(ctx, http.MethodGet, "/blockchain_stats", nil, &resp, readDeadline); err != nil {
		return Stats{}, err
	}
	return resp, nil
}

func (c *HTTPClient) VerifyIntegrity(ctx context.Context) (bool, error) {
	var resp integrityResponse
	if err := c.do(ctx, http.MethodGet, "/verify_integrity", nil, &resp, mutateDeadline); err != nil {
		return false, err
	}
	if !resp.IntegrityOK {
		// Integrity failure is actionable, not a normal negative.
		return false, fmt.Errorf("%w: %s", errs.ErrIntegrity, resp.Message)
	}
	return true, nil
}
