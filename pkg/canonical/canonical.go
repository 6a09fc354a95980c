// Package canonical produces deterministic byte representations of
// engine inputs and outputs. Identical values always canonicalize to
// identical bytes, which is what lets callers compare, cache, and
// content-address validation results and baseline snapshots.
package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
	"golang.org/x/text/unicode/norm"
)

// Marshal renders v as RFC 8785 (JCS) canonical JSON. Text is brought to
// Unicode NFC before canonicalization so visually identical strings cannot
// produce divergent bytes.
func Marshal(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical marshal: %w", err)
	}
	out, err := jcs.Transform(norm.NFC.Bytes(raw))
	if err != nil {
		return nil, fmt.Errorf("canonical transform: %w", err)
	}
	return out, nil
}

// Hash returns the sha256-prefixed digest of the canonical form of v.
func Hash(v any) (string, error) {
	b, err := Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return "sha256:" + hex.EncodeToString(sum[:]), nil
}

// HashBytes digests raw bytes without canonicalization.
func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// NormalizeText returns s in Unicode NFC, the same normalization Marshal
// applies to whole documents. Callers comparing individual text fields
// against canonicalized output use this to agree on the form.
func NormalizeText(s string) string {
	return norm.NFC.String(s)
}
