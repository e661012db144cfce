package permit

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/dkorovin/tagproof/internal/errs"
)

func newTestCodeVerifier(window time.Duration) (*CodeVerifier, *fakeClock) {
	clk := newFakeClock()
	v := NewCodeVerifier(window)
	v.now = clk.Now
	v.store.now = clk.Now
	return v, clk
}

func TestGenerateCode_Format(t *testing.T) {
	t.Parallel()

	re := regexp.MustCompile(`^[A-Z]{2}[0-9]{3}$`)
	for i := 0; i < 200; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}
		if !re.MatchString(code) {
			t.Fatalf("code %q: want two letters + three digits", code)
		}
		for _, confusable := range []string{"0", "1", "I", "O", "L"} {
			if strings.Contains(code, confusable) {
				t.Fatalf("code %q contains confusable %q", code, confusable)
			}
		}
	}
}

func TestCodeVerifier_IssueAndConfirm(t *testing.T) {
	t.Parallel()
	v, _ := newTestCodeVerifier(time.Hour)

	code, err := v.Issue("A1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if v.Valid("A1") {
		t.Fatalf("issuing must not open the window")
	}
	if err := v.Confirm("A1", "XX999"); !errors.Is(err, errs.ErrCodeMismatch) {
		t.Fatalf("wrong code: want ErrCodeMismatch, got %v", err)
	}
	if err := v.Confirm("A1", code); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if !v.Valid("A1") {
		t.Fatalf("valid after confirmation")
	}
	if v.Valid("A2") {
		t.Fatalf("confirmation must not leak across assets")
	}

	// The code is single-use.
	if err := v.Confirm("A1", code); !errors.Is(err, errs.ErrCodeMismatch) {
		t.Fatalf("re-confirm spent code: want ErrCodeMismatch, got %v", err)
	}
}

func TestCodeVerifier_AttemptBudget(t *testing.T) {
	t.Parallel()
	v, _ := newTestCodeVerifier(time.Hour)

	code, err := v.Issue("A1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	for i := 0; i < maxConfirmAttempts; i++ {
		if err := v.Confirm("A1", "WRONG"); !errors.Is(err, errs.ErrCodeMismatch) {
			t.Fatalf("attempt %d: want ErrCodeMismatch, got %v", i, err)
		}
	}
	// Budget exhausted: even the right code is void now.
	if err := v.Confirm("A1", code); !errors.Is(err, errs.ErrCodeMismatch) {
		t.Fatalf("voided code must not confirm, got %v", err)
	}
	if v.Valid("A1") {
		t.Fatalf("window must stay closed after exhausted attempts")
	}
}

func TestCodeVerifier_PendingExpires(t *testing.T) {
	t.Parallel()
	v, clk := newTestCodeVerifier(time.Hour)

	code, err := v.Issue("A1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	clk.Advance(time.Hour)
	if err := v.Confirm("A1", code); !errors.Is(err, errs.ErrCodeMismatch) {
		t.Fatalf("expired pending code must not confirm, got %v", err)
	}
}

func TestCodeVerifier_ReissueReplaces(t *testing.T) {
	t.Parallel()
	v, _ := newTestCodeVerifier(time.Hour)

	old, err := v.Issue("A1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	fresh, err := v.Issue("A1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if old != fresh {
		if err := v.Confirm("A1", old); !errors.Is(err, errs.ErrCodeMismatch) {
			t.Fatalf("stale code must not confirm, got %v", err)
		}
	}
	if err := v.Confirm("A1", fresh); err != nil {
		t.Fatalf("Confirm fresh: %v", err)
	}
}
