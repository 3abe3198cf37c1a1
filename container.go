package pickle

import (
	"hash/maphash"
	"math"
	"math/big"
	"sort"

	"github.com/aristanetworks/gomap"
)

// orderedSet and orderedMap back SetValue/FrozenSetValue and DictValue.
// They reuse the teacher's approach of driving a generic gomap.Map with
// custom equal/hash callbacks to get Python-like cross-type-equal O(1)
// membership (dict.go's Dict type), but operate over the closed
// HashableValue sum type via a type switch instead of dict.go's reflect-based
// classification over arbitrary interface{} — the variant set here is fixed
// and already known at compile time, so there is nothing for reflect to earn
// its keep on.
//
// Python sets/dicts have no guaranteed enumeration order, but every test
// vector and every encoder round-trip in this package needs one, so both
// containers dynamically resort their keys by the public total order (order.go)
// on read; insertion order is not tracked or exposed.

var seed = maphash.MakeSeed()

func newOrderedSet() *orderedSet {
	return &orderedSet{m: gomap.NewHint[HashableValue, struct{}](0, hvEqual, hvHash)}
}

type orderedSet struct {
	m *gomap.Map[HashableValue, struct{}]
}

// Add inserts v if no equal element is already present (first-insertion
// wins, matching Python set semantics where re-adding an equal element does
// not replace the original).
func (s *orderedSet) Add(v HashableValue) {
	if _, ok := s.m.Get_(v); ok {
		return
	}
	s.m.Set(v, struct{}{})
}

func (s *orderedSet) Contains(v HashableValue) bool {
	_, ok := s.m.Get_(v)
	return ok
}

func (s *orderedSet) Len() int { return s.m.Len() }

// SortedItems returns every element ordered by the public total order (§3.4).
func (s *orderedSet) SortedItems() []HashableValue {
	out := make([]HashableValue, 0, s.m.Len())
	s.m.Iter()(func(k HashableValue, _ struct{}) bool {
		out = append(out, k)
		return true
	})
	sort.Slice(out, func(i, j int) bool { return Compare(out[i], out[j]) < 0 })
	return out
}

// rawSortedItems orders by the encoder-internal raw order instead, used
// when this set is itself nested inside a value being serialized
// deterministically (order.go's compareSetsRaw).
func (s *orderedSet) rawSortedItems() []HashableValue {
	out := make([]HashableValue, 0, s.m.Len())
	s.m.Iter()(func(k HashableValue, _ struct{}) bool {
		out = append(out, k)
		return true
	})
	sort.Slice(out, func(i, j int) bool { return compareRaw(out[i], out[j]) < 0 })
	return out
}

func newOrderedMap() *orderedMap {
	return &orderedMap{m: gomap.NewHint[HashableValue, Value](0, hvEqual, hvHash)}
}

type orderedMap struct {
	m *gomap.Map[HashableValue, Value]
}

// Set stores value under key, overwriting any prior value for an equal key
// ("most recent wins", matching repeated SETITEM/SETITEMS on the wire and
// Python dict construction semantics).
func (d *orderedMap) Set(key HashableValue, value Value) {
	d.m.Set(key, value)
}

func (d *orderedMap) Get(key HashableValue) (Value, bool) {
	return d.m.Get_(key)
}

func (d *orderedMap) Len() int { return d.m.Len() }

// Entry is one key/value pair of a DictValue, surfaced in canonical
// (Compare-sorted) order.
type Entry struct {
	Key   HashableValue
	Value Value
}

func (d *orderedMap) SortedEntries() []Entry {
	out := make([]Entry, 0, d.m.Len())
	d.m.Iter()(func(k HashableValue, v Value) bool {
		out = append(out, Entry{Key: k, Value: v})
		return true
	})
	sort.Slice(out, func(i, j int) bool { return Compare(out[i].Key, out[j].Key) < 0 })
	return out
}

// hvEqual and hvHash implement Python-like cross-type equality/hashing over
// the closed HashableValue set: the numeric cluster (Bool/I64/Int/F64) is
// equal and hashes identically across concrete Go types whenever the
// mathematical values coincide, exactly as dict.go's equal/hash pair treats
// Python's int/float/bool/complex/Decimal family. Unlike dict.go's
// ByteString-bridging rules (str/bytes equal only through an intermediate
// Python-2 ByteString type), this sum type has no ByteString variant, so
// BytesValue and StringValue are never cross-equal, matching Python 3.
func hvEqual(a, b HashableValue) bool {
	return Compare(a, b) == 0
}

func hvHash(s maphash.Seed, v HashableValue) uint64 {
	switch x := v.(type) {
	case NoneValue:
		return hashTag(s, 0)
	case BoolValue:
		if x {
			return hashNumeric(s, 1)
		}
		return hashNumeric(s, 0)
	case I64Value:
		return hashNumeric(s, float64(x))
	case IntValue:
		if f, acc := new(big.Float).SetInt(x.N).Float64(); acc == big.Exact {
			return hashNumeric(s, f)
		}
		return hashBigFallback(s, x.N)
	case F64Value:
		return hashNumeric(s, float64(x))
	case BytesValue:
		return hashBytes(s, 1, x.Get())
	case StringValue:
		return hashBytes(s, 2, []byte(x.Get()))
	case FrozenSetValue:
		var h uint64
		for _, e := range x.Get().SortedItems() {
			h ^= hvHash(s, e)
		}
		return h ^ hashTag(s, 3)
	case HashableTuple:
		h := hashTag(s, 4)
		for _, e := range x.Get() {
			h = h*1099511628211 ^ hvHash(s, e)
		}
		return h
	default:
		return 0
	}
}

// hashNumeric hashes a float64 so that any two HashableValue whose
// mathematical values are equal (e.g. BoolValue(true), I64Value(1),
// F64Value(1.0)) collide onto the same bucket, since Compare treats them as
// equal and a hash map requires equal keys to hash equally.
func hashNumeric(s maphash.Seed, f float64) uint64 {
	if f == 0 {
		f = 0 // fold -0.0 onto +0.0
	}
	if math.IsNaN(f) {
		f = math.NaN() // Compare treats every NaN as equal
	}
	var mh maphash.Hash
	mh.SetSeed(s)
	var buf [8]byte
	bits := math.Float64bits(f)
	for i := 0; i < 8; i++ {
		buf[i] = byte(bits >> (8 * i))
	}
	mh.Write(buf[:])
	return mh.Sum64()
}

// hashBigFallback hashes a big.Int whose magnitude cannot be represented
// exactly as float64; Compare only ever treats two such values as equal when
// they are bit-for-bit equal integers, so hashing the decimal text is a
// valid (if not maximally fast) hash.
func hashBigFallback(s maphash.Seed, n *big.Int) uint64 {
	var mh maphash.Hash
	mh.SetSeed(s)
	mh.WriteString(n.String())
	return mh.Sum64()
}

func hashBytes(s maphash.Seed, tag byte, b []byte) uint64 {
	var mh maphash.Hash
	mh.SetSeed(s)
	mh.WriteByte(tag)
	mh.Write(b)
	return mh.Sum64()
}

func hashTag(s maphash.Seed, tag byte) uint64 {
	var mh maphash.Hash
	mh.SetSeed(s)
	mh.WriteByte(tag)
	return mh.Sum64()
}

