// Package model defines domain entities used by services and repositories.
package model

import "time"

// OwnershipAction is the kind of event recorded in the ledger history.
type OwnershipAction string

const (
	ActionRegister OwnershipAction = "register"
	ActionTransfer OwnershipAction = "transfer"
)

// Display fallbacks used when ledger node data lacks the corresponding field.
const (
	UnknownProduct      = "Unknown Product"
	UnknownCategory     = "Unknown"
	UnknownManufacturer = "Unknown"

	// NoTransferDate is reported when an asset has never been transferred.
	NoTransferDate = "not applicable"
)

// TimestampLayout formats ledger timestamps for presentation fields.
const TimestampLayout = "02 Jan 2006 15:04"

// OwnershipRecord is one immutable entry of an asset's ledger history,
// ordered by timestamp ascending.
type OwnershipRecord struct {
	UserID    string
	Timestamp int64 // unix seconds
	NodeID    string
	Action    OwnershipAction
}

// Time returns the record timestamp as time.Time.
func (r OwnershipRecord) Time() time.Time { return time.Unix(r.Timestamp, 0) }

// Asset is the mutable local projection of a registered product.
// Authoritative fields (CurrentOwner, RegisteredOnLedger) are overwritten
// wholesale by reconciliation, never merged field-by-field.
type Asset struct {
	ID                 string // tag-derived id, ledger asset key
	Name               string
	Description        string
	Manufacturer       string // manufacturer user id
	ManufacturerName   string
	Category           string
	ImageURL           string
	CreatedAt          time.Time
	Properties         map[string]string
	CurrentOwner       string // user id
	RegisteredOnLedger bool
	IsTemplate         bool
	TemplateID         string
}

// VerificationResult is the externally observed outcome of a tag scan.
// Authentic=false results still carry identity fields when known, so callers
// can distinguish "not found" from "found but failed trust check".
type VerificationResult struct {
	Authentic        bool
	AssetID          string
	ProductName      string
	Category         string
	CurrentOwner     string // display name when resolvable, raw id otherwise
	Manufacturer     string
	RegistrationDate string
	PreviousOwners   int
	LastTransferDate string
	OwnershipHistory []OwnershipRecord
	Properties       map[string]string
}

// TagProcessResult reports the outcome of a raw tag scan notification.
type TagProcessResult struct {
	AssetID string
	Message string
}

// Profile is a user directory entry, used only for presentation.
type Profile struct {
	UserID      string
	DisplayName string
}
