package pickle

import (
	"fmt"
	"math/big"
	"sync/atomic"
)

// identitySeq hands out process-unique identity tokens for Shared/SharedFrozen
// cells. A monotonic counter is simpler and just as sufficient as the
// pointer-address trick the original Rust implementation uses
// (Rc::as_ptr(...).expose_provenance() in value.rs) — both only need to be
// stable and distinct per live allocation, not tied to a memory address.
var identitySeq uint64

func nextIdentity() uint64 {
	return atomic.AddUint64(&identitySeq, 1)
}

// Shared is the wrapper used for mutable containers (List, Set, Dict).
// Multiple Value sites can name the same Shared cell; mutating the payload
// through one reference is visible through all others — this is what lets a
// decoded pickle reproduce the source ecosystem's object-identity aliasing
// (spec §3.2, §4.3).
type Shared[T any] struct {
	cell *sharedCell[T]
}

type sharedCell[T any] struct {
	id      uint64
	payload T
}

// NewShared allocates a fresh shared-mutable cell.
func NewShared[T any](v T) Shared[T] {
	return Shared[T]{cell: &sharedCell[T]{id: nextIdentity(), payload: v}}
}

// Identity returns a token that is equal for two Shared values iff they
// name the same underlying cell. The encoder's memo uses this for O(1)
// cycle/sharing detection (spec §4.2).
func (s Shared[T]) Identity() uint64 { return s.cell.id }

// Get returns the current payload.
func (s Shared[T]) Get() T { return s.cell.payload }

// Set replaces the payload visible through every alias of this cell.
func (s Shared[T]) Set(v T) { s.cell.payload = v }

// IsNil reports whether this Shared was never assigned a cell (its zero value).
func (s Shared[T]) IsNil() bool { return s.cell == nil }

// SharedFrozen is the wrapper used for immutable payloads (Bytes, String,
// Tuple, FrozenSet). The payload never changes after construction, so unlike
// Shared there is no Set: multiple sites can freely share one allocation
// with no aliasing hazard.
type SharedFrozen[T any] struct {
	cell *frozenCell[T]
}

type frozenCell[T any] struct {
	id      uint64
	payload T
}

// NewSharedFrozen allocates a fresh shared-immutable cell.
func NewSharedFrozen[T any](v T) SharedFrozen[T] {
	return SharedFrozen[T]{cell: &frozenCell[T]{id: nextIdentity(), payload: v}}
}

func (s SharedFrozen[T]) Identity() uint64 { return s.cell.id }
func (s SharedFrozen[T]) Get() T           { return s.cell.payload }
func (s SharedFrozen[T]) IsNil() bool      { return s.cell == nil }

// Value is the recursive sum type decoding produces and encoding consumes.
// It is implemented as a closed interface satisfied only by the types
// declared in this file — isValue is unexported so no type outside this
// package can add a variant.
type Value interface {
	isValue()
	fmt.Stringer
}

// HashableValue is the projection of Value restricted to the variants
// admissible as Set elements or Dict keys (spec §3.1). Every HashableValue
// is itself a Value (the method set embeds Value), so a HashableValue can be
// used anywhere a Value is expected without conversion.
type HashableValue interface {
	Value
	isHashable()
}

// ---- None ----

// NoneValue represents Python's None.
type NoneValue struct{}

func (NoneValue) isValue()      {}
func (NoneValue) isHashable()    {}
func (NoneValue) String() string { return "None" }

// ---- Bool ----

// BoolValue represents a Python bool.
type BoolValue bool

func (BoolValue) isValue()   {}
func (BoolValue) isHashable() {}
func (b BoolValue) String() string {
	if b {
		return "True"
	}
	return "False"
}

// ---- I64 ----

// I64Value represents a Python int that fits in a signed 64-bit word.
type I64Value int64

func (I64Value) isValue()    {}
func (I64Value) isHashable()  {}
func (i I64Value) String() string { return fmt.Sprintf("%d", int64(i)) }

// ---- Int (arbitrary precision) ----

// IntValue represents a Python int too large to fit in I64Value. The
// decoder only ever produces an IntValue when the magnitude does not fit in
// int64 (spec §3.3 invariant 4); smaller values downgrade to I64Value.
type IntValue struct {
	N *big.Int
}

func (IntValue) isValue()   {}
func (IntValue) isHashable() {}
func (i IntValue) String() string { return i.N.String() }

// ---- F64 ----

// F64Value represents a Python float.
type F64Value float64

func (F64Value) isValue()   {}
func (F64Value) isHashable() {}
func (f F64Value) String() string { return formatFloat(float64(f)) }

// ---- Bytes ----

// BytesValue represents a Python bytes object: an arbitrary, immutable byte
// sequence (spec §3.1, §3.3 invariant 5).
type BytesValue struct {
	SharedFrozen[[]byte]
}

func NewBytesValue(b []byte) BytesValue {
	return BytesValue{NewSharedFrozen(b)}
}

func (BytesValue) isValue()   {}
func (BytesValue) isHashable() {}
func (b BytesValue) String() string { return fmt.Sprintf("b%q", b.Get()) }

// ---- String ----

// StringValue represents a Python str: an immutable, valid-UTF-8 string
// (spec §3.3 invariant 5).
type StringValue struct {
	SharedFrozen[string]
}

func NewStringValue(s string) StringValue {
	return StringValue{NewSharedFrozen(s)}
}

func (StringValue) isValue()   {}
func (StringValue) isHashable() {}
func (s StringValue) String() string { return fmt.Sprintf("%q", s.Get()) }

// ---- List ----

// ListValue represents a Python list: a mutable, ordered, shared-owned
// sequence of Value. It is not hashable.
type ListValue struct {
	Shared[[]Value]
}

func NewListValue(items []Value) ListValue {
	return ListValue{NewShared(items)}
}

func (ListValue) isValue() {}
func (l ListValue) String() string { return stringifySeq(l.Get(), "[", "]", false) }

// ---- Tuple ----

// TupleValue represents a Python tuple whose elements are general Values
// (not necessarily hashable). It is immutable but, unlike HashableTuple, is
// not itself usable as a Set element/Dict key until every element proves
// hashable — see TupleValue.Hashable.
type TupleValue struct {
	SharedFrozen[[]Value]
}

func NewTupleValue(items []Value) TupleValue {
	return TupleValue{NewSharedFrozen(items)}
}

func (TupleValue) isValue() {}
func (t TupleValue) String() string {
	items := t.Get()
	return stringifySeq(items, "(", ")", len(items) == 1)
}

// Hashable converts a TupleValue into a HashableTuple, failing with
// ErrValueNotHashable if any element is not itself hashable. This mirrors
// the fallible Value::into_hashable conversion for tuples in the original
// Rust model (value.rs), where Value::Tuple(Vec<Value>) and
// HashableValue::Tuple(Vec<HashableValue>) are distinct types precisely
// because a tuple can contain an unhashable element (e.g. a list).
func (t TupleValue) Hashable() (HashableTuple, error) {
	items := t.Get()
	out := make([]HashableValue, len(items))
	for i, v := range items {
		h, err := ToHashable(v)
		if err != nil {
			return HashableTuple{}, err
		}
		out[i] = h
	}
	return HashableTuple{NewSharedFrozen(out)}, nil
}

// HashableTuple is the Tuple variant of HashableValue: a tuple all of whose
// elements are themselves hashable, and which is therefore usable as a Set
// element or Dict key.
type HashableTuple struct {
	SharedFrozen[[]HashableValue]
}

func NewHashableTuple(items []HashableValue) HashableTuple {
	return HashableTuple{NewSharedFrozen(items)}
}

func (HashableTuple) isValue()   {}
func (HashableTuple) isHashable() {}
func (t HashableTuple) String() string {
	items := t.Get()
	return stringifySeqHashable(items, "(", ")", len(items) == 1)
}

// ToValue widens a HashableTuple into a general TupleValue. Always
// succeeds: every HashableValue is already a Value.
func (t HashableTuple) ToValue() TupleValue {
	items := t.Get()
	out := make([]Value, len(items))
	for i, v := range items {
		out[i] = v
	}
	return TupleValue{NewSharedFrozen(out)}
}

// ---- Set / FrozenSet ----

// SetValue represents a Python set: a mutable, shared-owned collection of
// HashableValue (insertion order is not kept) whose canonical iteration order is the total
// order of §3.4 (see orderedSet in container.go). Not hashable.
type SetValue struct {
	Shared[*orderedSet]
}

func NewSetValue() SetValue {
	return SetValue{NewShared(newOrderedSet())}
}

func (SetValue) isValue() {}
func (s SetValue) String() string {
	os := s.Get()
	if os.Len() == 0 {
		return "set()"
	}
	return stringifySeqHashable(os.SortedItems(), "{", "}", false)
}

// FrozenSetValue represents a Python frozenset: an immutable, shared-owned
// collection of HashableValue. It is itself hashable, since its elements
// already are and its contents never change after construction.
type FrozenSetValue struct {
	SharedFrozen[*orderedSet]
}

func NewFrozenSetValue(os *orderedSet) FrozenSetValue {
	return FrozenSetValue{NewSharedFrozen(os)}
}

func (FrozenSetValue) isValue()   {}
func (FrozenSetValue) isHashable() {}
func (s FrozenSetValue) String() string {
	return stringifySeqHashable(s.Get().SortedItems(), "frozenset([", "])", false)
}

// ---- Dict ----

// DictValue represents a Python dict: a mutable, shared-owned mapping from
// HashableValue to Value whose canonical iteration order is the total order
// of §3.4 (see orderedMap in container.go). Not hashable.
type DictValue struct {
	Shared[*orderedMap]
}

func NewDictValue() DictValue {
	return DictValue{NewShared(newOrderedMap())}
}

func (DictValue) isValue() {}
func (d DictValue) String() string {
	om := d.Get()
	entries := om.SortedEntries()
	s := "{"
	for i, e := range entries {
		if i > 0 {
			s += ", "
		}
		s += e.Key.String() + ": " + e.Value.String()
	}
	return s + "}"
}

// ---- ToHashable ----

// ToHashable attempts to view v as a HashableValue, failing with
// ErrValueNotHashable if its variant is not a member of the hashable
// projection (spec §3.1).
func ToHashable(v Value) (HashableValue, error) {
	switch x := v.(type) {
	case NoneValue:
		return x, nil
	case BoolValue:
		return x, nil
	case I64Value:
		return x, nil
	case IntValue:
		return x, nil
	case F64Value:
		return x, nil
	case BytesValue:
		return x, nil
	case StringValue:
		return x, nil
	case HashableTuple:
		return x, nil
	case TupleValue:
		return x.Hashable()
	case FrozenSetValue:
		return x, nil
	default:
		return nil, newError(ErrValueNotHashable, 0, typeName(v))
	}
}

func typeName(v Value) string {
	switch v.(type) {
	case NoneValue:
		return "None"
	case BoolValue:
		return "bool"
	case I64Value, IntValue:
		return "int"
	case F64Value:
		return "float"
	case BytesValue:
		return "bytes"
	case StringValue:
		return "str"
	case ListValue:
		return "list"
	case TupleValue, HashableTuple:
		return "tuple"
	case SetValue:
		return "set"
	case FrozenSetValue:
		return "frozenset"
	case DictValue:
		return "dict"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func stringifySeq(items []Value, prefix, suffix string, trailingComma bool) string {
	s := prefix
	for i, v := range items {
		if i > 0 {
			s += ", "
		}
		s += v.String()
	}
	if trailingComma {
		s += ","
	}
	return s + suffix
}

func stringifySeqHashable(items []HashableValue, prefix, suffix string, trailingComma bool) string {
	s := prefix
	for i, v := range items {
		if i > 0 {
			s += ", "
		}
		s += v.String()
	}
	if trailingComma {
		s += ","
	}
	return s + suffix
}

func formatFloat(f float64) string {
	s := fmt.Sprintf("%g", f)
	for _, c := range s {
		if c == '.' || c == 'e' || c == 'E' || c == 'N' || c == 'n' { // N catches NaN, n catches +Inf/-Inf
			return s
		}
	}
	return s + ".0"
}
