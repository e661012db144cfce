package httpapi

import (
	"time"

	"github.com/dkorovin/tagproof/internal/model"
)

// JSON DTOs for the API surface. Domain types stay free of wire tags.

type ownershipRecordDTO struct {
	UserID    string `json:"user_id"`
	Timestamp int64  `json:"timestamp"`
	NodeID    string `json:"node_id"`
	Action    string `json:"action"`
}

type verificationResultDTO struct {
	Authentic        bool                 `json:"authentic"`
	AssetID          string               `json:"asset_id"`
	ProductName      string               `json:"product_name"`
	Category         string               `json:"category"`
	CurrentOwner     string               `json:"current_owner"`
	Manufacturer     string               `json:"manufacturer"`
	RegistrationDate string               `json:"registration_date"`
	PreviousOwners   int                  `json:"previous_owners"`
	LastTransferDate string               `json:"last_transfer_date"`
	OwnershipHistory []ownershipRecordDTO `json:"ownership_history"`
	Properties       map[string]string    `json:"properties"`
}

type assetDTO struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	Description        string            `json:"description"`
	Manufacturer       string            `json:"manufacturer"`
	ManufacturerName   string            `json:"manufacturer_name"`
	Category           string            `json:"category"`
	ImageURL           string            `json:"image_url"`
	CreatedAt          time.Time         `json:"created_at"`
	Properties         map[string]string `json:"properties"`
	CurrentOwner       string            `json:"current_owner"`
	RegisteredOnLedger bool              `json:"registered_on_ledger"`
	IsTemplate         bool              `json:"is_template"`
	TemplateID         string            `json:"template_id"`
}

func toHistoryDTO(history []model.OwnershipRecord) []ownershipRecordDTO {
	out := make([]ownershipRecordDTO, 0, len(history))
	for _, rec := range history {
		out = append(out, ownershipRecordDTO{
			UserID:    rec.UserID,
			Timestamp: rec.Timestamp,
			NodeID:    rec.NodeID,
			Action:    string(rec.Action),
		})
	}
	return out
}

func toResultDTO(res *model.VerificationResult) verificationResultDTO {
	return verificationResultDTO{
		Authentic:        res.Authentic,
		AssetID:          res.AssetID,
		ProductName:      res.ProductName,
		Category:         res.Category,
		CurrentOwner:     res.CurrentOwner,
		Manufacturer:     res.Manufacturer,
		RegistrationDate: res.RegistrationDate,
		PreviousOwners:   res.PreviousOwners,
		LastTransferDate: res.LastTransferDate,
		OwnershipHistory: toHistoryDTO(res.OwnershipHistory),
		Properties:       res.Properties,
	}
}

func toAssetDTO(a *model.Asset) assetDTO {
	return assetDTO{
		ID:                 a.ID,
		Name:               a.Name,
		Description:        a.Description,
		Manufacturer:       a.Manufacturer,
		ManufacturerName:   a.ManufacturerName,
		Category:           a.Category,
		ImageURL:           a.ImageURL,
		CreatedAt:          a.CreatedAt,
		Properties:         a.Properties,
		CurrentOwner:       a.CurrentOwner,
		RegisteredOnLedger: a.RegisteredOnLedger,
		IsTemplate:         a.IsTemplate,
		TemplateID:         a.TemplateID,
	}
}

func fromAssetDTO(d assetDTO) *model.Asset {
	return &model.Asset{
		ID:               d.ID,
		Name:             d.Name,
		Description:      d.Description,
		ManufacturerName: d.ManufacturerName,
		Category:         d.Category,
		ImageURL:         d.ImageURL,
		Properties:       d.Properties,
		IsTemplate:       d.IsTemplate,
		TemplateID:       d.TemplateID,
	}
}
