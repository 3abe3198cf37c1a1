package pickle

// Type-conversion helpers bridging the closed Value sum type to plain Go
// values, adapted from the teacher's typeconv.go (AsInt64/AsBytes/AsString)
// and extended with the dict-key string projection value.rs's
// to_string_key defines for HashableValue.

import (
	"math/big"
)

// AsInt64 represents v as an int64, succeeding for both I64Value and any
// IntValue whose magnitude fits — the same bridge the teacher's AsInt64
// gives between Python's int and long.
func AsInt64(v Value) (int64, error) {
	switch x := v.(type) {
	case I64Value:
		return int64(x), nil
	case IntValue:
		n, ok := fitsInt64(x.N)
		if !ok {
			return 0, newError(ErrInvalidLiteral, 0, "int outside of int64 range")
		}
		return n, nil
	}
	return 0, newError(ErrInvalidLiteral, 0, "expected int, got "+typeName(v))
}

// AsBigInt represents v as an arbitrary-precision integer, succeeding for
// both I64Value and IntValue without any range restriction.
func AsBigInt(v Value) (*big.Int, error) {
	switch x := v.(type) {
	case I64Value:
		return big.NewInt(int64(x)), nil
	case IntValue:
		return x.N, nil
	}
	return nil, newError(ErrInvalidLiteral, 0, "expected int, got "+typeName(v))
}

// AsBytes represents v as a byte slice, succeeding only for BytesValue.
func AsBytes(v Value) ([]byte, error) {
	b, ok := v.(BytesValue)
	if !ok {
		return nil, newError(ErrInvalidLiteral, 0, "expected bytes, got "+typeName(v))
	}
	return b.Get(), nil
}

// AsString represents v as a Go string, succeeding only for StringValue.
func AsString(v Value) (string, error) {
	s, ok := v.(StringValue)
	if !ok {
		return "", newError(ErrInvalidLiteral, 0, "expected str, got "+typeName(v))
	}
	return s.Get(), nil
}

// ValueAsStringKey renders a HashableValue as a simple dict/JSON-like string
// key: None becomes "null", bools become "True"/"False", ints render in
// decimal, and floats render as F64Value.String does: Go's %g form with ".0"
// appended only when that form has no '.', no exponent and is not NaN/Inf,
// so 1e+20 renders as "1e+20" with no decimal point.
// Any variant outside that set (Bytes, String, FrozenSet, Tuple) returns
// ok=false — this is a narrow, intentionally lossy projection, not a
// replacement for Value.String(). Grounded on src/value.rs's to_string_key.
func ValueAsStringKey(h HashableValue) (s string, ok bool) {
	switch x := h.(type) {
	case NoneValue:
		return "null", true
	case BoolValue:
		if x {
			return "True", true
		}
		return "False", true
	case I64Value:
		return x.String(), true
	case IntValue:
		return x.String(), true
	case F64Value:
		return formatFloat(float64(x)), true
	default:
		return "", false
	}
}
