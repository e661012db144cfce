package permit

import "time"

// Manager gates asset transfers on both trust signals at once: a transfer is
// authorized only while the physical tap and the code confirmation are both
// valid. The two windows run on independent clocks; the combined expiry is
// whichever runs out first.
type Manager struct {
	physical *ProximityVerifier
	code     *CodeVerifier
}

// NewManager composes the two verifiers.
func NewManager(physical *ProximityVerifier, code *CodeVerifier) *Manager {
	return &Manager{physical: physical, code: code}
}

// Authorized reports whether both signals are valid at this instant. Callers
// executing a transfer must re-check immediately before the ledger call rather
// than caching an earlier answer.
func (m *Manager) Authorized(assetID string) bool {
	return m.physical.Valid(assetID) && m.code.Valid(assetID)
}

// Remaining returns how long the combined authorization stays open: the
// minimum of the two remaining windows, zero if either is invalid.
func (m *Manager) Remaining(assetID string) time.Duration {
	p := m.physical.Remaining(assetID)
	c := m.code.Remaining(assetID)
	if p == 0 || c == 0 {
		return 0
	}
	if c < p {
		return c
	}
	return p
}

// AuthorizedUntil normalizes the two windows to a single expiry timestamp.
func (m *Manager) AuthorizedUntil(assetID string) (time.Time, bool) {
	left := m.Remaining(assetID)
	if left == 0 {
		return time.Time{}, false
	}
	return time.Now().Add(left), true
}

// Revoke clears both records. Must run on every exit path of a transfer so a
// completed or abandoned transfer never leaves a stale window open.
func (m *Manager) Revoke(assetID string) {
	m.physical.Clear(assetID)
	m.code.Clear(assetID)
}
