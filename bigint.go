package pickle

import "math/big"

// decodeLong2 parses the little-endian two's-complement byte encoding used
// by LONG1/LONG4 (and, after un-quoting, by the legacy LONG opcode) into a
// big.Int. Transliterated from the teacher's decodeLong (ogorek.go): build
// the magnitude by accumulating bytes from most significant to least, then,
// if the sign bit of the top byte is set, undo two's complement by
// subtracting one and flipping the remaining bits before negating.
func decodeLong2(data []byte) *big.Int {
	decoded := new(big.Int)
	switch n := len(data); {
	case n < 1:
		return decoded
	case n == 1:
		v := int64(data[0])
		negative := data[0] > 127
		decoded.SetInt64(v)
		if negative {
			decoded = undoTwosComplement(decoded)
		}
		return decoded
	default:
		negative := data[n-1] > 127
		for i := n - 1; i >= 0; i-- {
			a := big.NewInt(int64(data[i]))
			a.Lsh(a, uint(8*i))
			decoded.Add(decoded, a)
		}
		if negative {
			decoded = undoTwosComplement(decoded)
		}
		return decoded
	}
}

func undoTwosComplement(decoded *big.Int) *big.Int {
	one := big.NewInt(1)
	decoded.Sub(decoded, one)
	raw := decoded.Bytes()
	for i := range raw {
		raw[i] = ^raw[i]
	}
	decoded.SetBytes(raw)
	decoded.Neg(decoded)
	return decoded
}

// encodeLong2 is the inverse of decodeLong2: it renders n as the shortest
// little-endian two's-complement byte string round-tripping through
// decodeLong2, the representation LONG1 (length < 256) and LONG4 (length
// fits uint32) opcodes carry. The empty byte string is the canonical
// encoding of zero, matching CPython's pickle.py.
func encodeLong2(n *big.Int) []byte {
	if n.Sign() == 0 {
		return nil
	}
	if n.Sign() > 0 {
		b := n.Bytes() // big-endian magnitude, no leading sign byte
		if len(b) > 0 && b[0] > 127 {
			b = append([]byte{0}, b...) // keep top bit clear: stays positive
		}
		return reverseBytes(b)
	}

	// Negative: two's complement of (-n)-1's bit-inverse, classic algorithm
	// mirrored from decodeLong2's inverse operations.
	mag := new(big.Int).Neg(n) // magnitude, > 0
	mag.Sub(mag, big.NewInt(1))
	raw := mag.Bytes()
	for i := range raw {
		raw[i] = ^raw[i]
	}
	if len(raw) == 0 || raw[0] < 128 {
		raw = append([]byte{0xff}, raw...)
	}
	return reverseBytes(raw)
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// fitsInt64 reports whether n's value is representable as an int64, the
// threshold the decoder uses to decide between I64Value and IntValue
// (spec §3.3 invariant 4) and the encoder uses in reverse to decide between
// BININT-family opcodes and LONG1/LONG4.
func fitsInt64(n *big.Int) (int64, bool) {
	if !n.IsInt64() {
		return 0, false
	}
	return n.Int64(), true
}
