package permit

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/dkorovin/tagproof/internal/errs"
)

// Code alphabet excludes visually confusable characters (0, 1, I, L, O).
const (
	codeLetters = "ABCDEFGHJKMNPQRSTUVWXYZ"
	codeDigits  = "23456789"
)

// maxConfirmAttempts caps guesses against a pending code before it is voided.
const maxConfirmAttempts = 5

// GenerateCode returns a fresh 5-character confirmation code: two letters
// followed by three digits. Pure; nothing is retained until Issue.
func GenerateCode() (string, error) {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	out := make([]byte, 5)
	for i := 0; i < 2; i++ {
		out[i] = codeLetters[int(buf[i])%len(codeLetters)]
	}
	for i := 2; i < 5; i++ {
		out[i] = codeDigits[int(buf[i])%len(codeDigits)]
	}
	return string(out), nil
}

type pendingCode struct {
	code     string
	issuedAt time.Time
	attempts int
}

// CodeVerifier issues confirmation codes and records that the rightful owner
// confirmed one for an asset within the validity window. Confirmation requires
// the literal issued code: a bare confirmation event is not enough.
type CodeVerifier struct {
	store  *WindowStore
	window time.Duration

	mu      sync.Mutex
	pending map[string]*pendingCode
	now     func() time.Time // overridable in tests
}

// NewCodeVerifier constructs a verifier with the given window.
func NewCodeVerifier(window time.Duration) *CodeVerifier {
	return &CodeVerifier{
		store:   NewWindowStore(window),
		window:  window,
		pending: make(map[string]*pendingCode),
		now:     time.Now,
	}
}

// Issue generates a code for the asset and retains it for later confirmation,
// replacing any previously pending code. The pending code expires with the
// same window as the confirmation itself.
func (v *CodeVerifier) Issue(assetID string) (string, error) {
	code, err := GenerateCode()
	if err != nil {
		return "", err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pending[assetID] = &pendingCode{code: code, issuedAt: v.now()}
	return code, nil
}

// Confirm validates the presented code against the pending one and, on match,
// records confirmation for the asset. A wrong code counts against a small
// attempt budget; exhausting it voids the pending code.
func (v *CodeVerifier) Confirm(assetID, code string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	p, ok := v.pending[assetID]
	if !ok || v.now().Sub(p.issuedAt) >= v.window {
		delete(v.pending, assetID)
		return errs.ErrCodeMismatch
	}
	if p.code != code {
		p.attempts++
		if p.attempts >= maxConfirmAttempts {
			delete(v.pending, assetID)
		}
		return errs.ErrCodeMismatch
	}
	delete(v.pending, assetID)
	v.store.Record(assetID)
	return nil
}

// Valid reports whether a confirmation for the asset is within the window.
func (v *CodeVerifier) Valid(assetID string) bool { return v.store.Valid(assetID) }

// Remaining returns how long the confirmation stays valid.
func (v *CodeVerifier) Remaining(assetID string) time.Duration {
	return v.store.Remaining(assetID)
}

// Clear drops both the confirmation record and any pending code.
func (v *CodeVerifier) Clear(assetID string) {
	v.mu.Lock()
	delete(v.pending, assetID)
	v.mu.Unlock()
	v.store.Clear(assetID)
}
