package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendDecimal(t *testing.T) {
	cases := map[uint32]string{
		0:          "0",
		1:          "1",
		10:         "10",
		255:        "255",
		1023:       "1023",
		4294967295: "4294967295",
	}
	for v, want := range cases {
		assert.Equal(t, want, string(AppendDecimal(nil, v)), "value %d", v)
	}

	assert.Equal(t, "x42", string(AppendDecimal([]byte("x"), 42)))
}

func TestParseDecimal(t *testing.T) {
	v, ok := ParseDecimal([]byte("512"))
	assert.True(t, ok)
	assert.Equal(t, uint32(512), v)

	for _, bad := range []string{"", "-1", "12a", "4294967296", "99999999999"} {
		_, ok := ParseDecimal([]byte(bad))
		assert.False(t, ok, "input %q", bad)
	}
}

func TestBiasEncoding(t *testing.T) {
	assert.Equal(t, byte(10), EncodeBiased(DirInput))
	assert.Equal(t, byte(11), EncodeBiased(LevelHigh))
	assert.Equal(t, 0, DecodeBiased(10))
	assert.Equal(t, 1, DecodeBiased(11))
	assert.Equal(t, -10, DecodeBiased(0))
}

func TestOpcodesAvoidBiasedRange(t *testing.T) {
	for b := 0; b < 256; b++ {
		if IsOpcode(byte(b)) {
			assert.Less(t, b, ValueBias, "opcode %d overlaps biased values", b)
		}
	}
	assert.False(t, IsOpcode(0))
	assert.False(t, IsOpcode(Ack))
}
