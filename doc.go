// Package pickle decodes and encodes Python's pickle wire format without
// ever executing code on the decoder's behalf.
//
// Use Decoder to decode a pickle from an input stream:
//
//	d := pickle.NewDecoder(r)
//	v, err := d.Decode() // v is a pickle.Value
//
// Use Encoder to encode a Value as a pickle onto an output stream:
//
//	e := pickle.NewEncoder(w)
//	err := e.Encode(v)
//
// # Value model
//
// Every decoded object is one of a closed set of variants:
//
//	Python            Go
//	------            --
//	None              pickle.NoneValue
//	bool              pickle.BoolValue
//	int (fits int64)  pickle.I64Value
//	int (large)       pickle.IntValue   (*big.Int)
//	float             pickle.F64Value
//	bytes/bytearray   pickle.BytesValue
//	str               pickle.StringValue
//	list              pickle.ListValue
//	tuple             pickle.TupleValue / pickle.HashableTuple
//	set               pickle.SetValue
//	frozenset         pickle.FrozenSetValue
//	dict              pickle.DictValue
//
// list/set/dict are mutable and reference-like: decoding two memo
// references to the same pickled object yields two Values that alias the
// same Shared cell, exactly as two names bound to the same Python list
// would. bytes/str/tuple/frozenset are immutable and may still be
// physically shared (SharedFrozen) without that sharing being observable
// other than through pointer-identity-sensitive code.
//
// Only the variants that satisfy HashableValue may appear as a Set element
// or Dict key; ToHashable performs (and, for List/Set/Dict, fails) that
// narrowing. Compare gives HashableValue the total order described by the
// package's invariants: numeric variants (Bool/I64/Int/F64) compare across
// concrete Go types as their mathematical value, NaN sorts below every
// other number, and non-numeric variants order by a fixed variant rank
// before falling back to structural comparison.
//
// # Pickle protocol versions
//
// Protocol 0 is the original, human-readable-for-numbers/strings encoding.
// Protocols 1 and 2 add binary encodings for efficiency; 2 is the newest
// protocol CPython 2's pickle module understands. Protocol 3 adds a binary
// bytes representation. Protocol 4 moves everything to binary encoding and
// adds framing. Protocol 5 adds BYTEARRAY8, which decodes as bytes, and
// out-of-band buffers, which are not supported by this package — see the
// package's Non-goals.
//
// Decode auto-detects the protocol in effect from the stream's own PROTO
// opcode (or its absence, for protocol 0). Encode defaults to protocol 4;
// an explicit EncoderConfig.Protocol selects a different target, and
// EncoderConfig.AutoUpgradeProtocol controls whether encoding a value that
// needs a newer protocol than requested (e.g. bytes under protocol 2)
// silently upgrades or fails with ErrProtocolTooLow.
//
// # What this package does not do
//
// This decoder never calls a user-supplied callable, never imports a
// module, and never constructs an arbitrary class instance: GLOBAL,
// STACK_GLOBAL, REDUCE, BUILD, INST, OBJ, NEWOBJ, NEWOBJ_EX, persistent
// IDs, extension-registry codes, and out-of-band buffers are all
// recognized opcodes that this package refuses to interpret, surfacing
// ErrUnsupported instead. This is the source of the "safe to decode
// untrusted pickles" property — contrary to CPython's own unpickler, where
// a malicious stream can run arbitrary code.
package pickle
