package pickle

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeLong2RoundTrip(t *testing.T) {
	cases := []string{
		"0",
		"1",
		"-1",
		"127",
		"128",
		"-128",
		"-129",
		"255",
		"256",
		"65535",
		"-65536",
		"123456789012345678901234567890",
		"-123456789012345678901234567890",
	}
	for _, c := range cases {
		n, ok := new(big.Int).SetString(c, 10)
		if !ok {
			t.Fatalf("bad literal %q", c)
		}
		enc := encodeLong2(n)
		got := decodeLong2(enc)
		assert.Equal(t, 0, n.Cmp(got), "round trip of %s, encoded=%v, got=%s", c, enc, got.String())
	}
}

func TestEncodeLong2ZeroIsEmpty(t *testing.T) {
	assert.Empty(t, encodeLong2(big.NewInt(0)))
}

func TestDecodeLong2EmptyIsZero(t *testing.T) {
	got := decodeLong2(nil)
	assert.Equal(t, 0, got.Sign())
}

func TestDecodeLong2KnownVectors(t *testing.T) {
	// single byte, positive
	assert.Equal(t, big.NewInt(127), decodeLong2([]byte{0x7f}))
	// single byte, negative (two's complement: 0xff == -1)
	assert.Equal(t, big.NewInt(-1), decodeLong2([]byte{0xff}))
	// two bytes LE, 256
	assert.Equal(t, big.NewInt(256), decodeLong2([]byte{0x00, 0x01}))
	// two bytes LE, negative: 0xfe 0xff == -2
	assert.Equal(t, big.NewInt(-2), decodeLong2([]byte{0xfe, 0xff}))
}

func TestFitsInt64(t *testing.T) {
	n, ok := fitsInt64(big.NewInt(42))
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)

	huge, _ := new(big.Int).SetString("99999999999999999999999999", 10)
	_, ok = fitsInt64(huge)
	assert.False(t, ok)
}
