package testutils

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingT struct {
	errors []string
}

func (r *recordingT) Errorf(format string, args ...interface{}) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func TestTextAsserter(t *testing.T) {
	rec := &recordingT{}
	ta := NewTextAsserter(rec)

	assert.True(t, ta.Assert("a  \nb\n", "a\nb"), "trailing whitespace MUST be ignored by default")
	assert.False(t, ta.Assert("a\nc", "a\nb"))
	assert.Len(t, rec.errors, 1)
	assert.Contains(t, rec.errors[0], "-b")
	assert.Contains(t, rec.errors[0], "+c")

	ta = NewTextAsserter(rec, WithIgnoreEmptyLines(true))
	assert.True(t, ta.Assert("a\n\nb", "a\nb"))
}

func TestTextAsserter_Colors(t *testing.T) {
	ta := NewTextAsserter(t, WithEnableColors(true))
	d := ta.Diff("x y", "x")
	assert.Contains(t, d, "x·y", "whitespace MUST be visible in colored diffs")
}

func TestJSONAsserter(t *testing.T) {
	rec := &recordingT{}
	ja := NewJSONAsserter(rec)

	assert.True(t, ja.Assert(`{"a":1,"b":2}`, `{"a":1}`), "extra keys MUST be ignored by default")
	assert.True(t, ja.Assert(`{"a":{"t":"2024"}}`, `{"a":{"t":"<<PRESENCE>>"}}`))
	assert.True(t, ja.Assert(`[{"a":1,"x":0},{"a":2}]`, `[{"a":1},{"a":2}]`))
	assert.False(t, ja.Assert(`{"a":2}`, `{"a":1}`))
	assert.Len(t, rec.errors, 1)

	strict := NewJSONAsserter(rec, WithIgnoreExtraKeys(false))
	assert.NotEmpty(t, strict.Diff(`{"a":1,"b":2}`, `{"a":1}`))

	ignoring := NewJSONAsserter(rec, WithIgnoreExtraKeys(false), WithIgnoredFields("observedAt"))
	assert.Empty(t, ignoring.Diff(`{"a":1,"observedAt":"now"}`, `{"a":1,"observedAt":"then"}`))
}

func TestAdvertisementBuilder_ResultPayload(t *testing.T) {
	adv := CreateMockAdvertisement("Thermo", "AA:BB:CC:DD:EE:FF", -40).
		WithServices("180F").
		WithTxPower(4)

	mock := adv.Build()
	assert.Equal(t, "Thermo", mock.LocalName())
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", mock.Addr().String())
	assert.Equal(t, -40, mock.RSSI())
	assert.Nil(t, mock.ManufacturerData())

	assert.NotEmpty(t, adv.Bytes())
	assert.Contains(t, string(adv.ResultPayload()), `"device":"AA:BB:CC:DD:EE:FF"`)
}
