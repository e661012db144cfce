package tag

import (
	"errors"
	"testing"

	"github.com/dkorovin/tagproof/internal/errs"
)

func TestExtractAssetID_OK(t *testing.T) {
	t.Parallel()

	cases := []struct {
		payload string
		want    string
	}{
		{"Tag ID (hex): AABBCC", "AABBCC"},
		{"NDEF record\nTag ID (hex): deadbeef\nTech: NfcA", "DEADBEEF"},
		{"prefix Tag ID (hex): 04A1B2C3 suffix", "04A1B2C3"},
	}
	for _, tc := range cases {
		got, err := ExtractAssetID(tc.payload)
		if err != nil {
			t.Fatalf("ExtractAssetID(%q): %v", tc.payload, err)
		}
		if got != tc.want {
			t.Fatalf("ExtractAssetID(%q) = %q, want %q", tc.payload, got, tc.want)
		}
	}
}

func TestExtractAssetID_Malformed(t *testing.T) {
	t.Parallel()

	for _, payload := range []string{
		"",
		"no id here",
		"Tag ID (hex): ",
		"Tag ID: AABBCC",
		"tag id (hex): AABBCC",
	} {
		if _, err := ExtractAssetID(payload); !errors.Is(err, errs.ErrMalformedTag) {
			t.Fatalf("ExtractAssetID(%q): want ErrMalformedTag, got %v", payload, err)
		}
	}
}
