package canonical

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestMarshalKeyOrderIndependent produces identical bytes for maps built
// in different insertion orders.
func TestMarshalKeyOrderIndependent(t *testing.T) {
	a := map[string]any{"zeta": 1, "alpha": "x", "mid": true}
	b := map[string]any{"mid": true, "alpha": "x", "zeta": 1}

	ba, err := Marshal(a)
	require.NoError(t, err)
	bb, err := Marshal(b)
	require.NoError(t, err)
	require.Equal(t, ba, bb)
}

// TestHashStableAndPrefixed hashes identical values identically and
// carries the sha256 prefix.
func TestHashStableAndPrefixed(t *testing.T) {
	v := map[string]any{"k": []any{1, 2, 3}}

	h1, err := Hash(v)
	require.NoError(t, err)
	h2, err := Hash(v)
	require.NoError(t, err)

	require.Equal(t, h1, h2)
	require.Regexp(t, `^sha256:[0-9a-f]{64}$`, h1)

	other, err := Hash(map[string]any{"k": []any{1, 2, 4}})
	require.NoError(t, err)
	require.NotEqual(t, h1, other)
}

// TestHashBytes digests raw bytes with the same prefix convention.
func TestHashBytes(t *testing.T) {
	h := HashBytes([]byte("baseline"))
	require.Regexp(t, `^sha256:[0-9a-f]{64}$`, h)
	require.Equal(t, h, HashBytes([]byte("baseline")))
	require.NotEqual(t, h, HashBytes([]byte("baseline2")))
}

// TestMarshalNormalizesText hashes decomposed and precomposed accents to
// the same canonical bytes, so snapshot digests never diverge on visually
// identical names.
func TestMarshalNormalizesText(t *testing.T) {
	decomposed := map[string]any{"name": "Résumé"} // e + combining acute
	composed := map[string]any{"name": "Résumé"}

	bd, err := Marshal(decomposed)
	require.NoError(t, err)
	bc, err := Marshal(composed)
	require.NoError(t, err)
	require.Equal(t, bc, bd)

	hd, err := Hash(decomposed)
	require.NoError(t, err)
	hc, err := Hash(composed)
	require.NoError(t, err)
	require.Equal(t, hc, hd)
}

// TestNormalizeText folds decomposed accents into NFC form.
func TestNormalizeText(t *testing.T) {
	decomposed := "Résumé" // e + combining acute
	composed := "Résumé"

	require.Equal(t, composed, NormalizeText(decomposed))
	require.Equal(t, composed, NormalizeText(composed))
}
