package permit

import "time"

// ProximityVerifier records evidence that this device physically read an
// asset's tag within the validity window. It owns its store so its keys never
// collide with code-confirmation records for the same asset.
type ProximityVerifier struct {
	store *WindowStore
}

// NewProximityVerifier constructs a verifier with the given window.
func NewProximityVerifier(window time.Duration) *ProximityVerifier {
	return &ProximityVerifier{store: NewWindowStore(window)}
}

// RecordTap marks the asset as physically verified now. Called once per
// successful tag scan that yields this asset id.
func (v *ProximityVerifier) RecordTap(assetID string) { v.store.Record(assetID) }

// Valid reports whether a tap for the asset is within the window.
func (v *ProximityVerifier) Valid(assetID string) bool { return v.store.Valid(assetID) }

// Remaining returns how long the tap evidence stays valid.
func (v *ProximityVerifier) Remaining(assetID string) time.Duration {
	return v.store.Remaining(assetID)
}

// Clear drops the tap record for the asset.
func (v *ProximityVerifier) Clear(assetID string) { v.store.Clear(assetID) }
