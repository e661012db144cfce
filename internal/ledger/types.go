package ledger

import "github.com/dkorovin/tagproof/internal/model"

// Wire DTOs for the orchestrator's JSON API. Mutating endpoints all answer
// with mutationResponse.

type mutationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status string `json:"status"`
	NodeID string `json:"node_id"`
}

type processTagRequest struct {
	TagID           string `json:"tag_id"`
	UserID          string `json:"user_id"`
	TagTechnologies string `json:"tag_technologies"`
	NDEFMessage     string `json:"ndef_message"`
	Timestamp       int64  `json:"timestamp"`
}

type registerAssetRequest struct {
	AssetID   string            `json:"asset_id"`
	UserID    string            `json:"user_id"`
	AssetData map[string]string `json:"asset_data"`
}

type transferAssetRequest struct {
	AssetID    string `json:"asset_id"`
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
}

type ownershipResponse struct {
	IsOwner bool `json:"is_owner"`
}

type historyEntry struct {
	UserID    string `json:"user_id"`
	Timestamp int64  `json:"timestamp"`
	NodeID    string `json:"node_id"`
	Action    string `json:"action"`
}

type historyResponse struct {
	History []historyEntry `json:"history"`
}

type nodeDataResponse struct {
	Data map[string]string `json:"data"`
}

type balanceResponse struct {
	Balance float64 `json:"balance"`
}

type userAssetsResponse struct {
	Assets []string `json:"assets"`
}

type integrityResponse struct {
	IntegrityOK bool   `json:"integrity_ok"`
	Message     string `json:"message"`
}

// Stats summarizes the orchestrator's chain-wide counters.
type Stats struct {
	TotalBlocks    int64 `json:"total_blocks"`
	TotalAssets    int64 `json:"total_assets"`
	TotalTransfers int64 `json:"total_transfers"`
	ActiveNodes    int   `json:"active_nodes"`
}

// TagScan carries the raw scan metadata forwarded to the orchestrator.
type TagScan struct {
	TagID           string
	UserID          string
	TagTechnologies string
	NDEFMessage     string
	Timestamp       int64
}

func (e historyEntry) toModel() model.OwnershipRecord {
	return model.OwnershipRecord{
		UserID:    e.UserID,
		Timestamp: e.Timestamp,
		NodeID:    e.NodeID,
		Action:    model.OwnershipAction(e.Action),
	}
}
