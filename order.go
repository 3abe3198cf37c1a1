package pickle

import (
	"math"
	"math/big"
)

// variantRank gives the tie-breaking order between HashableValue variants
// that are not mutually comparable as numbers: None < numeric < Bytes <
// String < FrozenSet < Tuple. This is a direct transliteration of the
// discriminant ordering src/value.rs gives HashableValue's derive(PartialOrd)
// companion — the numeric cluster (Bool/I64/Int/F64) is carved out and
// compared across types first, per §3.4, before falling back to rank.
func variantRank(v HashableValue) int {
	switch v.(type) {
	case NoneValue:
		return 0
	case BoolValue, I64Value, IntValue, F64Value:
		return 1
	case BytesValue:
		return 2
	case StringValue:
		return 3
	case FrozenSetValue:
		return 4
	case HashableTuple:
		return 5
	default:
		return 6
	}
}

func isNumeric(v HashableValue) bool {
	switch v.(type) {
	case BoolValue, I64Value, IntValue, F64Value:
		return true
	default:
		return false
	}
}

// Compare implements the public total order over HashableValue required by
// §3.4: Bool/I64/Int/F64 compare as their mathematical value regardless of
// concrete Go type (so BoolValue(true) == I64Value(1) == F64Value(1.0) in
// order, matching Python's cross-numeric-type comparisons); NaN sorts below
// every non-NaN value including -Inf; ties within the numeric cluster that
// remain exactly equal fall through to a stable same-value result of 0.
// Non-numeric variants never compare equal to numeric ones and instead
// order by variantRank, then structurally within the same variant.
func Compare(a, b HashableValue) int {
	an, bn := isNumeric(a), isNumeric(b)
	if an && bn {
		return compareNumeric(a, b)
	}
	if ra, rb := variantRank(a), variantRank(b); ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch x := a.(type) {
	case NoneValue:
		return 0
	case BytesValue:
		return compareBytes(x.Get(), b.(BytesValue).Get())
	case StringValue:
		return compareStrings(x.Get(), b.(StringValue).Get())
	case FrozenSetValue:
		return compareSets(x.Get(), b.(FrozenSetValue).Get())
	case HashableTuple:
		return compareTuples(x.Get(), b.(HashableTuple).Get())
	default:
		return 0
	}
}

// compareNumeric orders the merged Bool/I64/Int/F64 cluster. NaN is defined
// to be less than every other numeric value, public-order NaNs are mutually
// equal (spec §3.4's public order, as opposed to the encoder-only raw order
// which additionally distinguishes NaN by sign bit).
func compareNumeric(a, b HashableValue) int {
	aNaN := isNaN(a)
	bNaN := isNaN(b)
	if aNaN || bNaN {
		switch {
		case aNaN && bNaN:
			return 0
		case aNaN:
			return -1
		default:
			return 1
		}
	}

	// Big-int vs big-int: exact.
	if ai, aIsInt := asBigInt(a); aIsInt {
		if bi, bIsInt := asBigInt(b); bIsInt {
			return ai.Cmp(bi)
		}
	}
	// If either side is a float, compare as float unless one side is a big
	// int whose magnitude exceeds float64 precision, in which case fall
	// back to an exact big.Float comparison to avoid false equality from
	// rounding (mirrors value.rs's float_bigint_ord).
	af, aIsFloat := asFloat(a)
	bf, bIsFloat := asFloat(b)
	if aIsFloat || bIsFloat {
		if ai, aIsInt := asBigInt(a); aIsInt {
			return -floatBigIntOrd(bf, ai)
		}
		if bi, bIsInt := asBigInt(b); bIsInt {
			return floatBigIntOrd(af, bi)
		}
		// Whichever side isn't already a float must be Bool/I64Value (the
		// only other members of the numeric cluster at this point): widen it
		// to float64 before comparing, instead of comparing against the
		// zero value asFloat returns for a non-F64Value operand.
		if !aIsFloat {
			n, _ := asInt64(a)
			af = float64(n)
		}
		if !bIsFloat {
			n, _ := asInt64(b)
			bf = float64(n)
		}
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	// One side is a big int and the other a Bool/I64Value: widen the small
	// side to big.Int and compare exactly.
	if ai, aIsInt := asBigInt(a); aIsInt {
		bi, _ := asInt64(b)
		return ai.Cmp(big.NewInt(bi))
	}
	if bi, bIsInt := asBigInt(b); bIsInt {
		ai, _ := asInt64(a)
		return big.NewInt(ai).Cmp(bi)
	}
	// Both integral (Bool/I64), neither big: compare as int64.
	ai, _ := asInt64(a)
	bi, _ := asInt64(b)
	switch {
	case ai < bi:
		return -1
	case ai > bi:
		return 1
	default:
		return 0
	}
}

// floatBigIntOrd compares a float against a big.Int exactly, without losing
// precision by converting the big.Int down to float64 first. Mirrors
// src/value.rs's float_bigint_ord.
func floatBigIntOrd(f float64, bi *big.Int) int {
	bf := new(big.Float).SetInt(bi)
	ff := big.NewFloat(f)
	return ff.Cmp(bf)
}

func isNaN(v HashableValue) bool {
	f, ok := v.(F64Value)
	return ok && math.IsNaN(float64(f))
}

func asFloat(v HashableValue) (float64, bool) {
	if f, ok := v.(F64Value); ok {
		return float64(f), true
	}
	return 0, false
}

func asBigInt(v HashableValue) (*big.Int, bool) {
	if i, ok := v.(IntValue); ok {
		return i.N, true
	}
	return nil, false
}

func asInt64(v HashableValue) (int64, bool) {
	switch x := v.(type) {
	case BoolValue:
		if x {
			return 1, true
		}
		return 0, true
	case I64Value:
		return int64(x), true
	default:
		return 0, false
	}
}

func compareBytes(a, b []byte) int {
	la, lb := len(a), len(b)
	n := la
	if lb < n {
		n = lb
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case la < lb:
		return -1
	case la > lb:
		return 1
	default:
		return 0
	}
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareTuples(a, b []HashableValue) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// compareSets orders two frozensets lexicographically over their own
// canonical (Compare-sorted) element sequence. Python sets have no intrinsic
// order of their own; this ordering exists purely so FrozenSetValue can
// serve as a Dict key / Set element and still sort deterministically on the
// wire (encoder) and in test fixtures.
func compareSets(a, b *orderedSet) int {
	as := a.SortedItems()
	bs := b.SortedItems()
	n := len(as)
	if len(bs) < n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		if c := Compare(as[i], bs[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	default:
		return 0
	}
}

// ---- raw-hashable order (encoder-internal) ----

// rawRank splits the numeric cluster into four discriminant ranks instead of
// merging it, and treats NaN as an ordinary float ordered by IEEE-754
// total-order sign-and-payload rules. This is exactly RawHashableValue's
// derived Ord from src/value.rs: it exists only so the encoder can produce
// a deterministic traversal/memo order that need not match Python's runtime
// notion of equality, just needs to be a consistent total order over the
// concrete wire representation.
func rawRank(v HashableValue) int {
	switch v.(type) {
	case NoneValue:
		return 0
	case BoolValue:
		return 1
	case I64Value:
		return 2
	case IntValue:
		return 3
	case F64Value:
		return 4
	case BytesValue:
		return 5
	case StringValue:
		return 6
	case FrozenSetValue:
		return 7
	case HashableTuple:
		return 8
	default:
		return 9
	}
}

// compareRaw is the encoder-only counterpart to Compare: it never merges
// across concrete types, so a BoolValue(true), I64Value(1) and F64Value(1.0)
// are raw-distinct (and raw-ordered by rawRank) even though Compare treats
// them as the equal-valued members of one numeric cluster.
func compareRaw(a, b HashableValue) int {
	if ra, rb := rawRank(a), rawRank(b); ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch x := a.(type) {
	case NoneValue:
		return 0
	case BoolValue:
		y := b.(BoolValue)
		switch {
		case x == y:
			return 0
		case !x && y:
			return -1
		default:
			return 1
		}
	case I64Value:
		y := b.(I64Value)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	case IntValue:
		return x.N.Cmp(b.(IntValue).N)
	case F64Value:
		return totalFloatOrd(float64(x), float64(b.(F64Value)))
	case BytesValue:
		return compareBytes(x.Get(), b.(BytesValue).Get())
	case StringValue:
		return compareStrings(x.Get(), b.(StringValue).Get())
	case FrozenSetValue:
		return compareSetsRaw(x.Get(), b.(FrozenSetValue).Get())
	case HashableTuple:
		return compareTuplesRaw(x.Get(), b.(HashableTuple).Get())
	default:
		return 0
	}
}

// totalFloatOrd implements IEEE-754 totalOrder (as Rust's f64::total_cmp
// does): -NaN < -Inf < ... < -0.0 < +0.0 < ... < +Inf < +NaN. Ordinary
// Compare never reaches here for floats (it special-cases NaN itself); this
// exists so the raw encoder order is a true total order with no special
// cases left to the caller.
func totalFloatOrd(a, b float64) int {
	au := orderedFloatBits(a)
	bu := orderedFloatBits(b)
	switch {
	case au < bu:
		return -1
	case au > bu:
		return 1
	default:
		return 0
	}
}

// orderedFloatBits maps a float64's bit pattern to a uint64 whose ordinary
// unsigned order matches IEEE-754 totalOrder: negative values (sign bit set)
// have all bits flipped so that a larger magnitude negative sorts lower,
// positive values just get the sign bit set so they all sort above every
// negative value.
func orderedFloatBits(f float64) uint64 {
	bits := math.Float64bits(f)
	const signMask = uint64(1) << 63
	if bits&signMask != 0 {
		return ^bits
	}
	return bits | signMask
}

func compareSetsRaw(a, b *orderedSet) int {
	as := a.rawSortedItems()
	bs := b.rawSortedItems()
	n := len(as)
	if len(bs) < n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		if c := compareRaw(as[i], bs[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	default:
		return 0
	}
}

func compareTuplesRaw(a, b []HashableValue) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := compareRaw(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
