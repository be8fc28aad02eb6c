package advdata_test

import (
	"math/rand"
	"testing"

	"github.com/srg/blescan/internal/advdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_SkipsPaddingBetweenStructures(t *testing.T) {
	// GOAL: Verify a zero length byte is treated as padding and produces no element
	//
	// TEST SCENARIO: flags, one padding byte, manufacturer data → two elements, padding dropped

	raw := []byte{0x02, 0x01, 0x06, 0x00, 0x03, 0xFF, 0x4C, 0x00}

	elements, err := advdata.Decode(raw)

	require.NoError(t, err, "well-formed payload MUST decode")
	assert.Equal(t, []advdata.Element{
		{Type: 0x01, Value: []byte{0x06}},
		{Type: 0xFF, Value: []byte{0x4C, 0x00}},
	}, elements)
}

func TestDecode_EdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		raw      []byte
		expected []advdata.Element
	}{
		{
			name:     "nil input",
			raw:      nil,
			expected: nil,
		},
		{
			name:     "padding only",
			raw:      []byte{0x00, 0x00, 0x00},
			expected: nil,
		},
		{
			name:     "trailing padding",
			raw:      []byte{0x02, 0x0A, 0xF4, 0x00, 0x00},
			expected: []advdata.Element{{Type: 0x0A, Value: []byte{0xF4}}},
		},
		{
			name:     "type with empty value",
			raw:      []byte{0x01, 0x09},
			expected: []advdata.Element{{Type: 0x09, Value: []byte{}}},
		},
		{
			name: "unknown vendor type is kept",
			raw:  []byte{0x03, 0x3D, 0xAA, 0xBB, 0x02, 0x01, 0x1A},
			expected: []advdata.Element{
				{Type: 0x3D, Value: []byte{0xAA, 0xBB}},
				{Type: 0x01, Value: []byte{0x1A}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			elements, err := advdata.Decode(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, elements)
		})
	}
}

func TestDecode_Overrun(t *testing.T) {
	tests := []struct {
		name   string
		raw    []byte
		offset int
		want   int
		have   int
	}{
		{
			name:   "length byte without type",
			raw:    []byte{0x02, 0x01, 0x06, 0x01},
			offset: 3,
			want:   2,
			have:   1,
		},
		{
			name:   "value shorter than declared",
			raw:    []byte{0x05, 0xFF, 0x4C, 0x00},
			offset: 0,
			want:   6,
			have:   4,
		},
		{
			name:   "maximum length on short buffer",
			raw:    []byte{0x00, 0xFF, 0x01},
			offset: 1,
			want:   256,
			have:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var elements []advdata.Element
			var err error
			require.NotPanics(t, func() {
				elements, err = advdata.Decode(tt.raw)
			}, "decode MUST NOT panic on corrupt input")

			var decErr *advdata.DecodeError
			require.ErrorAs(t, err, &decErr, "overrun MUST be reported as DecodeError")
			assert.Equal(t, tt.raw, decErr.Raw, "error MUST carry the original bytes")
			assert.Equal(t, tt.offset, decErr.Offset)
			assert.Equal(t, tt.want, decErr.Want)
			assert.Equal(t, tt.have, decErr.Have)
			assert.Equal(t, advdata.Span(elements), countNonPadding(tt.raw[:tt.offset]),
				"elements before the corrupt structure MUST still be returned")
		})
	}
}

func TestDecode_DoesNotAliasInput(t *testing.T) {
	raw := []byte{0x03, 0xFF, 0x01, 0x02}

	elements, err := advdata.Decode(raw)
	require.NoError(t, err)

	raw[2] = 0xEE
	assert.Equal(t, []byte{0x01, 0x02}, elements[0].Value, "element values MUST NOT alias the input")
}

func TestDecode_SpanCoversValidPayloads(t *testing.T) {
	// GOAL: Verify any valid concatenation of (length, tag, value) triples decodes losslessly
	//
	// TEST SCENARIO: generate random structures → encode → decode → same elements, span == input length

	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 500; round++ {
		var want []advdata.Element
		for n := rng.Intn(8); n > 0; n-- {
			value := make([]byte, rng.Intn(30))
			rng.Read(value)
			want = append(want, advdata.Element{Type: byte(rng.Intn(256)), Value: value})
		}

		raw, err := advdata.Encode(want)
		require.NoError(t, err)

		got, err := advdata.Decode(raw)
		require.NoError(t, err, "round %d: valid payload MUST decode", round)
		require.Len(t, got, len(want))
		for i := range want {
			assert.Equal(t, want[i].Type, got[i].Type)
			assert.Equal(t, len(want[i].Value), len(got[i].Value))
			assert.Equal(t, want[i].Value, got[i].Value)
		}
		assert.Equal(t, len(raw), advdata.Span(got), "round %d: decoded span MUST equal input length", round)
	}
}

func TestDecode_NeverPanicsOnRandomInput(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 1000; round++ {
		raw := make([]byte, rng.Intn(40))
		rng.Read(raw)

		require.NotPanics(t, func() {
			elements, err := advdata.Decode(raw)
			if err == nil {
				assert.LessOrEqual(t, advdata.Span(elements), len(raw))
			}
		})
	}
}

func TestEncode_RejectsOversizedValue(t *testing.T) {
	_, err := advdata.Encode([]advdata.Element{{Type: 0xFF, Value: make([]byte, 255)}})
	assert.Error(t, err)
}

// countNonPadding returns the encoded size of the structures in a well-formed prefix.
func countNonPadding(prefix []byte) int {
	elements, err := advdata.Decode(prefix)
	if err != nil {
		return -1
	}
	return advdata.Span(elements)
}
