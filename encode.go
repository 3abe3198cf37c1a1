package pickle

import (
	"encoding/binary"
	"io"
	"math"
	"math/big"
	"strconv"
)

// highestSupportedProtocol mirrors the teacher's highestProtocol constant:
// the newest pickle protocol version this encoder can produce.
const highestSupportedProtocol = 5

// EncoderConfig tunes Encoder.
type EncoderConfig struct {
	// Protocol selects the pickle protocol version to target, 0 through 5.
	// It is used as given: since 0 is itself a legal protocol number, the
	// zero value targets the legacy text protocol rather than a default.
	// NewEncoder, which takes no config, targets 4.
	Protocol int

	// AutoUpgradeProtocol, if true, silently raises e.protocol to the
	// minimum version a value requires (e.g. bytes needs >= 3) instead of
	// failing with ErrProtocolTooLow.
	AutoUpgradeProtocol bool
}

// Encoder encodes a Value tree into a pickle byte stream.
type Encoder struct {
	w        io.Writer
	protocol int
	upgrade  bool

	memoByIdentity map[uint64]int64
	nextMemoIdx    int64
}

// NewEncoder constructs an Encoder targeting protocol 4, the version every
// Value variant this package models can be expressed in without fallback to
// legacy text opcodes.
func NewEncoder(w io.Writer) *Encoder {
	return NewEncoderWithConfig(w, &EncoderConfig{Protocol: 4})
}

// NewEncoderWithConfig constructs an Encoder honoring the given protocol
// selection and upgrade policy.
func NewEncoderWithConfig(w io.Writer, config *EncoderConfig) *Encoder {
	return &Encoder{
		w:              w,
		protocol:       config.Protocol,
		upgrade:        config.AutoUpgradeProtocol,
		memoByIdentity: make(map[uint64]int64),
	}
}

// Encode writes v as a complete pickle stream: an optional PROTO opcode,
// the value itself, and a final STOP.
func (e *Encoder) Encode(v Value) error {
	if e.protocol > highestSupportedProtocol {
		return newError(ErrProtocolTooLow, 0, "protocol exceeds highest supported version")
	}
	if e.protocol >= 2 {
		if err := e.emit(byte(opProto), byte(e.protocol)); err != nil {
			return err
		}
	}
	if err := e.encodeValue(v); err != nil {
		return err
	}
	return e.emit(byte(opStop))
}

func (e *Encoder) emit(b ...byte) error {
	_, err := e.w.Write(b)
	return err
}

func (e *Encoder) emitUint32LE(n uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], n)
	return e.emit(b[:]...)
}

func (e *Encoder) emitUint64LE(n uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], n)
	return e.emit(b[:]...)
}

func (e *Encoder) emitLine(prefix byte, body string) error {
	if err := e.emit(prefix); err != nil {
		return err
	}
	_, err := io.WriteString(e.w, body+"\n")
	return err
}

// requireProtocol either confirms the encoder's protocol already meets min,
// or — if AutoUpgradeProtocol is set — raises it to min, or else fails with
// ErrProtocolTooLow (spec's "explicit protocol-gated feature" behavior).
func (e *Encoder) requireProtocol(min int, feature string) error {
	if e.protocol >= min {
		return nil
	}
	if e.upgrade {
		e.protocol = min
		return nil
	}
	return newError(ErrProtocolTooLow, 0, feature)
}

// ---- identity memoization ----

// identityOf returns the Shared/SharedFrozen identity token backing v, for
// every variant that carries one, and false for value-typed variants
// (None/Bool/I64/Int/F64) that have no notion of object identity to dedupe.
func identityOf(v Value) (uint64, bool) {
	switch x := v.(type) {
	case BytesValue:
		return x.Identity(), true
	case StringValue:
		return x.Identity(), true
	case ListValue:
		return x.Identity(), true
	case TupleValue:
		return x.Identity(), true
	case HashableTuple:
		return x.Identity(), true
	case SetValue:
		return x.Identity(), true
	case FrozenSetValue:
		return x.Identity(), true
	case DictValue:
		return x.Identity(), true
	default:
		return 0, false
	}
}

// encodeValue is the dispatcher every recursive call goes through: it
// checks the memo for values with identity first, emitting a GET in place
// of a full re-encoding when the same underlying Shared/SharedFrozen cell
// has already been written once. This is what lets the encoder reproduce
// shared structure and self-reference cycles on the wire, the same
// aliasing property Shared[T]/SharedFrozen[T] exist to carry (spec §3.2,
// §4.3).
func (e *Encoder) encodeValue(v Value) error {
	if id, ok := identityOf(v); ok {
		if idx, seen := e.memoByIdentity[id]; seen {
			return e.emitGet(idx)
		}
	}

	switch x := v.(type) {
	case NoneValue:
		return e.emit(byte(opNone))
	case BoolValue:
		return e.encodeBool(bool(x))
	case I64Value:
		return e.encodeI64(int64(x))
	case IntValue:
		return e.encodeBigInt(x.N)
	case F64Value:
		return e.encodeF64(float64(x))
	case BytesValue:
		return e.encodeBytes(x)
	case StringValue:
		return e.encodeString(x)
	case ListValue:
		return e.encodeList(x)
	case TupleValue:
		return e.encodeTuple(x.Get(), x.Identity())
	case HashableTuple:
		return e.encodeTuple(widenTuple(x.Get()), x.Identity())
	case SetValue:
		return e.encodeSet(x)
	case FrozenSetValue:
		return e.encodeFrozenSet(x)
	case DictValue:
		return e.encodeDict(x)
	default:
		return newError(ErrUnsupported, 0, typeName(v))
	}
}

func widenTuple(items []HashableValue) []Value {
	out := make([]Value, len(items))
	for i, v := range items {
		out[i] = v
	}
	return out
}

// rememberIdentity registers id at the next memo slot and emits the
// appropriate PUT-family opcode for the configured protocol. Must be called
// exactly once per distinct identity, immediately after the opcode(s) that
// push the (possibly still-empty) value onto the unpickler's stack — for
// mutable containers that must happen BEFORE their children are encoded, so
// that a self-reference inside those children can GET this identity before
// it is fully built, mirroring CPython's own list/dict/set pickling order.
func (e *Encoder) rememberIdentity(id uint64) error {
	idx := e.nextMemoIdx
	e.nextMemoIdx++
	e.memoByIdentity[id] = idx
	return e.emitPut(idx)
}

func (e *Encoder) emitPut(idx int64) error {
	switch {
	case e.protocol >= 4:
		return e.emit(byte(opMemoize))
	case e.protocol >= 1:
		if idx < 256 {
			return e.emit(byte(opBinPut), byte(idx))
		}
		if err := e.emit(byte(opLongBinPut)); err != nil {
			return err
		}
		return e.emitUint32LE(uint32(idx))
	default:
		return e.emitLine(byte(opPut), strconv.FormatInt(idx, 10))
	}
}

func (e *Encoder) emitGet(idx int64) error {
	switch {
	case e.protocol >= 1:
		if idx < 256 {
			return e.emit(byte(opBinGet), byte(idx))
		}
		if err := e.emit(byte(opLongBinGet)); err != nil {
			return err
		}
		return e.emitUint32LE(uint32(idx))
	default:
		return e.emitLine(byte(opGet), strconv.FormatInt(idx, 10))
	}
}

// ---- scalars ----

func (e *Encoder) encodeBool(b bool) error {
	if e.protocol >= 2 {
		if b {
			return e.emit(byte(opNewtrue))
		}
		return e.emit(byte(opNewfalse))
	}
	if b {
		return e.emitLine(byte(opInt), "01")
	}
	return e.emitLine(byte(opInt), "00")
}

func (e *Encoder) encodeI64(v int64) error {
	if e.protocol == 0 {
		return e.emitLine(byte(opInt), strconv.FormatInt(v, 10))
	}
	switch {
	case v >= 0 && v < 256:
		return e.emit(byte(opBinInt1), byte(v))
	case v >= 0 && v < 65536:
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(v))
		return e.emit(byte(opBinInt2), b[0], b[1])
	case v >= math.MinInt32 && v <= math.MaxInt32:
		if err := e.emit(byte(opBinInt)); err != nil {
			return err
		}
		return e.emitUint32LE(uint32(int32(v)))
	default:
		return e.encodeBigInt(big.NewInt(v))
	}
}

func (e *Encoder) encodeBigInt(n *big.Int) error {
	if e.protocol == 0 {
		return e.emitLine(byte(opLong), n.String()+"L")
	}
	raw := encodeLong2(n)
	if len(raw) < 256 {
		if err := e.emit(byte(opLong1), byte(len(raw))); err != nil {
			return err
		}
		return e.emit(raw...)
	}
	if err := e.emit(byte(opLong4)); err != nil {
		return err
	}
	if err := e.emitUint32LE(uint32(len(raw))); err != nil {
		return err
	}
	return e.emit(raw...)
}

func (e *Encoder) encodeF64(f float64) error {
	if e.protocol == 0 {
		return e.emitLine(byte(opFloat), strconv.FormatFloat(f, 'g', 17, 64))
	}
	if err := e.emit(byte(opBinFloat)); err != nil {
		return err
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(f))
	return e.emit(b[:]...)
}

// ---- bytes / string ----

func (e *Encoder) encodeBytes(x BytesValue) error {
	if err := e.requireProtocol(3, "BYTES"); err != nil {
		return err
	}
	raw := x.Get()
	switch {
	case len(raw) < 256:
		if err := e.emit(byte(opShortBinBytes), byte(len(raw))); err != nil {
			return err
		}
	case len(raw) <= math.MaxUint32:
		if err := e.emit(byte(opBinBytes)); err != nil {
			return err
		}
		if err := e.emitUint32LE(uint32(len(raw))); err != nil {
			return err
		}
	default:
		if err := e.requireProtocol(4, "BYTES8"); err != nil {
			return err
		}
		if err := e.emit(byte(opBinBytes8)); err != nil {
			return err
		}
		if err := e.emitUint64LE(uint64(len(raw))); err != nil {
			return err
		}
	}
	if err := e.emit(raw...); err != nil {
		return err
	}
	return e.rememberIdentity(x.Identity())
}

func (e *Encoder) encodeString(x StringValue) error {
	raw := []byte(x.Get())
	switch {
	case e.protocol >= 4 && len(raw) < 256:
		if err := e.emit(byte(opShortBinUnicode), byte(len(raw))); err != nil {
			return err
		}
	case e.protocol >= 1 && len(raw) <= math.MaxUint32:
		if err := e.emit(byte(opBinUnicode)); err != nil {
			return err
		}
		if err := e.emitUint32LE(uint32(len(raw))); err != nil {
			return err
		}
	case e.protocol >= 4:
		if err := e.emit(byte(opBinUnicode8)); err != nil {
			return err
		}
		if err := e.emitUint64LE(uint64(len(raw))); err != nil {
			return err
		}
	default:
		if err := e.emitLine(byte(opUnicode), rawUnicodeEscape(x.Get())); err != nil {
			return err
		}
		return e.rememberIdentity(x.Identity())
	}
	if err := e.emit(raw...); err != nil {
		return err
	}
	return e.rememberIdentity(x.Identity())
}

// rawUnicodeEscape renders s for the protocol-0 UNICODE opcode, escaping
// only what raw-unicode-escape must: backslash itself and any code point
// outside print-safe ASCII, matching CPython's str.encode("raw_unicode_escape").
func rawUnicodeEscape(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		switch {
		case r == '\\':
			out = append(out, '\\', '\\')
		case r >= 0x20 && r < 0x7f:
			out = append(out, byte(r))
		case r <= 0xff:
			out = append(out, []byte("\\x"+padHex(int64(r), 2))...)
		case r <= 0xffff:
			out = append(out, []byte("\\u"+padHex(int64(r), 4))...)
		default:
			out = append(out, []byte("\\U"+padHex(int64(r), 8))...)
		}
	}
	return string(out)
}

func padHex(v int64, width int) string {
	s := strconv.FormatInt(v, 16)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

// ---- containers ----

func (e *Encoder) encodeList(x ListValue) error {
	if err := e.emit(byte(opEmptyList)); err != nil {
		return err
	}
	if err := e.rememberIdentity(x.Identity()); err != nil {
		return err
	}
	items := x.Get()
	if len(items) == 0 {
		return nil
	}
	if err := e.emit(byte(opMark)); err != nil {
		return err
	}
	for _, it := range items {
		if err := e.encodeValue(it); err != nil {
			return err
		}
	}
	return e.emit(byte(opAppends))
}

func (e *Encoder) encodeDict(x DictValue) error {
	if err := e.emit(byte(opEmptyDict)); err != nil {
		return err
	}
	if err := e.rememberIdentity(x.Identity()); err != nil {
		return err
	}
	entries := x.Get().SortedEntries()
	if len(entries) == 0 {
		return nil
	}
	if err := e.emit(byte(opMark)); err != nil {
		return err
	}
	for _, ent := range entries {
		if err := e.encodeValue(ent.Key); err != nil {
			return err
		}
		if err := e.encodeValue(ent.Value); err != nil {
			return err
		}
	}
	return e.emit(byte(opSetitems))
}

func (e *Encoder) encodeSet(x SetValue) error {
	if err := e.requireProtocol(4, "SET"); err != nil {
		return err
	}
	if err := e.emit(byte(opEmptySet)); err != nil {
		return err
	}
	if err := e.rememberIdentity(x.Identity()); err != nil {
		return err
	}
	items := x.Get().rawSortedItems()
	if len(items) == 0 {
		return nil
	}
	if err := e.emit(byte(opMark)); err != nil {
		return err
	}
	for _, it := range items {
		if err := e.encodeValue(it); err != nil {
			return err
		}
	}
	return e.emit(byte(opAddItems))
}

func (e *Encoder) encodeFrozenSet(x FrozenSetValue) error {
	if err := e.requireProtocol(4, "FROZENSET"); err != nil {
		return err
	}
	items := x.Get().rawSortedItems()
	if err := e.emit(byte(opMark)); err != nil {
		return err
	}
	for _, it := range items {
		if err := e.encodeValue(it); err != nil {
			return err
		}
	}
	if err := e.emit(byte(opFrozenSet)); err != nil {
		return err
	}
	return e.rememberIdentity(x.Identity())
}

// encodeTuple picks the tuple-building opcode before encoding any element,
// since TUPLE1/2/3 need nothing ahead of their operands while the general
// MARK+...+TUPLE form needs MARK emitted first — getting this order wrong
// corrupts the wire, so the decision is made up front rather than as a
// fallback after the elements are already written.
func (e *Encoder) encodeTuple(items []Value, identity uint64) error {
	if len(items) == 0 {
		if err := e.emit(byte(opEmptyTuple)); err != nil {
			return err
		}
		return e.rememberIdentity(identity)
	}

	var shortOp Opcode
	switch len(items) {
	case 1:
		shortOp = opTuple1
	case 2:
		shortOp = opTuple2
	case 3:
		shortOp = opTuple3
	}
	if shortOp != 0 && e.requireProtocol(2, "TUPLE1/2/3") == nil {
		for _, it := range items {
			if err := e.encodeValue(it); err != nil {
				return err
			}
		}
		if err := e.emit(byte(shortOp)); err != nil {
			return err
		}
		return e.rememberIdentity(identity)
	}

	if err := e.emit(byte(opMark)); err != nil {
		return err
	}
	for _, it := range items {
		if err := e.encodeValue(it); err != nil {
			return err
		}
	}
	if err := e.emit(byte(opTuple)); err != nil {
		return err
	}
	return e.rememberIdentity(identity)
}
