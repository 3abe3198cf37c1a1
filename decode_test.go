package pickle

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBytes(t *testing.T, b []byte) Value {
	t.Helper()
	v, err := NewDecoder(bytes.NewReader(b)).Decode()
	require.NoError(t, err)
	return v
}

func TestDecodeNone(t *testing.T) {
	v := decodeBytes(t, []byte{byte(opNone), byte(opStop)})
	assert.Equal(t, NoneValue{}, v)
}

func TestDecodeNewTrueFalse(t *testing.T) {
	assert.Equal(t, BoolValue(true), decodeBytes(t, []byte{byte(opNewtrue), byte(opStop)}))
	assert.Equal(t, BoolValue(false), decodeBytes(t, []byte{byte(opNewfalse), byte(opStop)}))
}

func TestDecodeLegacyIntAsBool(t *testing.T) {
	b := []byte("I01\n.")
	assert.Equal(t, BoolValue(true), decodeBytes(t, b))

	b = []byte("I00\n.")
	assert.Equal(t, BoolValue(false), decodeBytes(t, b))
}

func TestDecodeLegacyIntDecimal(t *testing.T) {
	b := []byte("I42\n.")
	assert.Equal(t, I64Value(42), decodeBytes(t, b))
}

func TestDecodeBinInt1(t *testing.T) {
	b := []byte{byte(opBinInt1), 0x05, byte(opStop)}
	assert.Equal(t, I64Value(5), decodeBytes(t, b))
}

func TestDecodeShortBinUnicode(t *testing.T) {
	payload := "hi"
	b := []byte{byte(opShortBinUnicode), byte(len(payload))}
	b = append(b, payload...)
	b = append(b, byte(opStop))
	sv, ok := decodeBytes(t, b).(StringValue)
	require.True(t, ok)
	assert.Equal(t, "hi", sv.Get())
}

func TestDecodeShortBinBytes(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03}
	b := []byte{byte(opShortBinBytes), byte(len(payload))}
	b = append(b, payload...)
	b = append(b, byte(opStop))
	bv, ok := decodeBytes(t, b).(BytesValue)
	require.True(t, ok)
	assert.Equal(t, payload, bv.Get())
}

func TestDecodeEmptyListAppend(t *testing.T) {
	b := []byte{
		byte(opEmptyList),
		byte(opBinInt1), 0x01,
		byte(opAppend),
		byte(opStop),
	}
	v := decodeBytes(t, b)
	lv, ok := v.(ListValue)
	require.True(t, ok)
	assert.Equal(t, []Value{I64Value(1)}, lv.Get())
}

func TestDecodeMarkListOfTwo(t *testing.T) {
	b := []byte{
		byte(opMark),
		byte(opBinInt1), 0x01,
		byte(opBinInt1), 0x02,
		byte(opList),
		byte(opStop),
	}
	v := decodeBytes(t, b)
	lv, ok := v.(ListValue)
	require.True(t, ok)
	assert.Equal(t, []Value{I64Value(1), I64Value(2)}, lv.Get())
}

func TestDecodeEmptyDictSetitem(t *testing.T) {
	b := []byte{
		byte(opEmptyDict),
		byte(opShortBinUnicode), 1, 'k',
		byte(opBinInt1), 0x09,
		byte(opSetitem),
		byte(opStop),
	}
	v := decodeBytes(t, b)
	dv, ok := v.(DictValue)
	require.True(t, ok)
	got, ok := dv.Get().Get(NewStringValue("k"))
	require.True(t, ok)
	assert.Equal(t, I64Value(9), got)
}

func TestDecodeTuple1(t *testing.T) {
	b := []byte{
		byte(opBinInt1), 0x07,
		byte(opTuple1),
		byte(opStop),
	}
	v := decodeBytes(t, b)
	tv, ok := v.(TupleValue)
	require.True(t, ok)
	assert.Equal(t, []Value{I64Value(7)}, tv.Get())
}

// TestDecodeSelfReferentialList exercises the memo-before-children scenario:
// a list that contains a reference to itself, built with BINPUT before the
// self-reference is read back with BINGET.
func TestDecodeSelfReferentialList(t *testing.T) {
	b := []byte{
		byte(opEmptyList),
		byte(opBinPut), 0x00,
		byte(opMark),
		byte(opBinGet), 0x00,
		byte(opAppends),
		byte(opStop),
	}
	v := decodeBytes(t, b)
	lv, ok := v.(ListValue)
	require.True(t, ok)
	require.Len(t, lv.Get(), 1)
	inner, ok := lv.Get()[0].(ListValue)
	require.True(t, ok)
	assert.Equal(t, lv.Identity(), inner.Identity())
}

func TestDecodeUnsupportedOpcodeSurfacesError(t *testing.T) {
	b := []byte{byte(opGlobal)}
	_, err := NewDecoder(bytes.NewReader(b)).Decode()
	require.Error(t, err)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ErrUnsupported, perr.Kind)
	assert.Equal(t, "GLOBAL", perr.Detail)
}

func TestDecodeMissingMemoKey(t *testing.T) {
	b := []byte{byte(opBinGet), 0x03, byte(opStop)}
	_, err := NewDecoder(bytes.NewReader(b)).Decode()
	require.Error(t, err)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ErrMissingMemoKey, perr.Kind)
}

func TestDecodeBadStackAtStop(t *testing.T) {
	b := []byte{
		byte(opBinInt1), 0x01,
		byte(opBinInt1), 0x02,
		byte(opStop),
	}
	_, err := NewDecoder(bytes.NewReader(b)).Decode()
	require.Error(t, err)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ErrBadStack, perr.Kind)
}

func TestDecodeValueNotHashableAsDictKey(t *testing.T) {
	b := []byte{
		byte(opEmptyDict),
		byte(opEmptyList),
		byte(opBinInt1), 0x01,
		byte(opSetitem),
		byte(opStop),
	}
	_, err := NewDecoder(bytes.NewReader(b)).Decode()
	require.Error(t, err)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ErrValueNotHashable, perr.Kind)
}

func TestDecoderResourceLimitStackDepth(t *testing.T) {
	b := []byte{
		byte(opBinInt1), 0x01,
		byte(opBinInt1), 0x02,
		byte(opStop),
	}
	d := NewDecoderWithConfig(bytes.NewReader(b), &DecoderConfig{MaxStackDepth: 1})
	_, err := d.Decode()
	require.Error(t, err)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ErrResourceLimitExceeded, perr.Kind)
}

func TestDecodeProtoOpcodeIgnoredThenValue(t *testing.T) {
	b := []byte{byte(opProto), 0x04, byte(opNone), byte(opStop)}
	assert.Equal(t, NoneValue{}, decodeBytes(t, b))
}

func TestDecodeProtoTooHighRejected(t *testing.T) {
	b := []byte{byte(opProto), 0x09, byte(opNone), byte(opStop)}
	_, err := NewDecoder(bytes.NewReader(b)).Decode()
	require.Error(t, err)
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ErrUnsupported, perr.Kind)
}

// TestDecodeBinBytes8HugeLengthFailsWithoutPanicking exercises a BINBYTES8
// header declaring a length the stream cannot possibly supply (here, far
// more than the few trailing bytes actually present, and well past what
// int(n) could even represent on its own) — this must fail cleanly with
// ErrTruncatedInput rather than pre-allocating a buffer sized to the
// declared length or panicking on an out-of-range makeslice.
func TestDecodeBinBytes8HugeLengthFailsWithoutPanicking(t *testing.T) {
	b := []byte{byte(opBinBytes8)}
	var lenField [8]byte
	// 2^63, so int(n) would go negative if ever converted directly.
	lenField[7] = 0x80
	b = append(b, lenField[:]...)
	b = append(b, 0x01, 0x02, 0x03) // far short of the declared length

	_, err := NewDecoder(bytes.NewReader(b)).Decode()
	require.Error(t, err)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ErrTruncatedInput, perr.Kind)
}

func TestDecodeLong1NegativeValue(t *testing.T) {
	// LONG1: 1-byte length prefix then the LE two's-complement payload.
	enc := encodeLong2(big.NewInt(-5))
	b := []byte{byte(opLong1), byte(len(enc))}
	b = append(b, enc...)
	b = append(b, byte(opStop))
	assert.Equal(t, I64Value(-5), decodeBytes(t, b))
}
