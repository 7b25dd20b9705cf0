package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{"b": 1, "a": "x", "c": true})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"x","b":1,"c":true}`, string(got))
}

func TestMarshalCanonical_NoHTMLEscape(t *testing.T) {
	got, err := MarshalCanonical("a<b>&c")
	require.NoError(t, err)
	assert.Equal(t, `"a<b>&c"`, string(got))
}

func TestMarshalCanonical_NFC(t *testing.T) {
	decomposed := "e\u0301"
	got, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(got))
}

func TestMarshalCanonical_RejectsFloatAndNull(t *testing.T) {
	_, err := MarshalCanonical(1.5)
	assert.Error(t, err)

	_, err = MarshalCanonical(map[string]any{"x": nil})
	assert.Error(t, err)
}

func TestMarshalCanonical_NestedArrays(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"gates": []string{"u1", "cx"},
		"map":   map[string]any{"1": []any{2}, "0": []any{1, 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"gates":["u1","cx"],"map":{"0":[1,2],"1":[2]}}`, string(got))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "caf\u00e9", NormalizeName("cafe\u0301"))
	assert.Equal(t, "bell", NormalizeName("bell"))
}
