// Package tag extracts asset ids from raw NFC tag payloads.
package tag

import (
	"regexp"
	"strings"

	"github.com/dkorovin/tagproof/internal/errs"
)

// Scanner UIs embed the tag UID in a fixed human-readable line.
var idPattern = regexp.MustCompile(`Tag ID \(hex\): ([0-9A-Fa-f]+)`)

// ExtractAssetID pulls the hex asset id out of a raw tag payload.
// Extraction failure is terminal for the scan.
func ExtractAssetID(payload string) (string, error) {
	m := idPattern.FindStringSubmatch(payload)
	if m == nil {
		return "", errs.ErrMalformedTag
	}
	return strings.ToUpper(m[1]), nil
}
