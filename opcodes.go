package pickle

// Opcode is the byte that identifies a single pickle instruction on the
// wire. The set is closed: every legal pickle stream for protocols 0 through
// 5 is built exclusively from the opcodes named below.
type Opcode byte

// Opcode constants, grouped by the protocol version that introduced them.
// Names and byte values follow CPython's pickle.py / pickletools.py, the
// same source the teacher's opcode table was transcribed from.
const (
	// Protocol 0

	opMark    Opcode = '(' // push markobject on the stack
	opStop    Opcode = '.' // every pickle ends with STOP
	opPop     Opcode = '0' // discard topmost stack item
	opPopMark Opcode = '1' // discard stack top through topmost markobject
	opDup     Opcode = '2' // duplicate top stack item
	opFloat   Opcode = 'F' // push float; decimal string argument
	opInt     Opcode = 'I' // push int or bool; decimal string argument
	opBinInt  Opcode = 'J' // push four-byte signed int
	opBinInt1 Opcode = 'K' // push 1-byte unsigned int
	opLong    Opcode = 'L' // push long; decimal string argument ending in 'L'
	opBinInt2 Opcode = 'M' // push 2-byte unsigned int
	opNone    Opcode = 'N' // push None

	opReduce         Opcode = 'R' // apply callable to argtuple (unsupported)
	opString         Opcode = 'S' // push string; quoted, NL-terminated argument
	opBinString      Opcode = 'T' // push string; 4-byte length prefix
	opShortBinString Opcode = 'U' // push string; 1-byte length prefix
	opUnicode        Opcode = 'V' // push unicode; raw-unicode-escape'd argument
	opBinUnicode     Opcode = 'X' // push unicode; 4-byte UTF-8 length prefix

	opAppend  Opcode = 'a' // append stack top to list below it
	opBuild   Opcode = 'b' // __setstate__/__dict__.update (unsupported)
	opGlobal  Opcode = 'c' // find_class(module, name) (unsupported)
	opDict    Opcode = 'd' // build dict from items above the mark
	opAppends Opcode = 'e' // extend list by items above the mark
	opGet     Opcode = 'g' // push memo[decimal-line key]
	opInst    Opcode = 'i' // build & push class instance (unsupported)
	opList    Opcode = 'l' // build list from items above the mark
	opPut     Opcode = 'p' // store stack top in memo; decimal-line key
	opSetitem Opcode = 's' // add one key/value pair to the dict below
	opTuple   Opcode = 't' // build tuple from items above the mark

	opPersid    Opcode = 'P' // persistent id (unsupported: Non-goal)
	opBinpersid Opcode = 'Q' // persistent id from stack (unsupported: Non-goal)

	// Protocol 1

	opEmptyDict      Opcode = '}'  // push empty dict
	opEmptyList      Opcode = ']'  // push empty list
	opEmptyTuple     Opcode = ')'  // push empty tuple
	opSetitems       Opcode = 'u'  // add key/value pairs above the mark
	opBinFloat       Opcode = 'G'  // push float; 8-byte big-endian IEEE-754
	opBinGet         Opcode = 'h'  // push memo[1-byte key]
	opLongBinGet     Opcode = 'j'  // push memo[4-byte LE key]
	opBinPut         Opcode = 'q'  // store stack top in memo; 1-byte key
	opLongBinPut     Opcode = 'r'  // store stack top in memo; 4-byte LE key
	opObj            Opcode = 'o'  // build & push class instance (unsupported)

	// Protocol 2

	opProto    Opcode = '\x80' // identify pickle protocol; 1-byte version
	opNewobj   Opcode = '\x81' // cls.__new__(argtuple) (unsupported)
	opExt1     Opcode = '\x82' // extension registry, 1-byte index (unsupported)
	opExt2     Opcode = '\x83' // extension registry, 2-byte index (unsupported)
	opExt4     Opcode = '\x84' // extension registry, 4-byte index (unsupported)
	opTuple1   Opcode = '\x85' // build 1-tuple from stack top
	opTuple2   Opcode = '\x86' // build 2-tuple from two topmost items
	opTuple3   Opcode = '\x87' // build 3-tuple from three topmost items
	opNewtrue  Opcode = '\x88' // push True
	opNewfalse Opcode = '\x89' // push False
	opLong1    Opcode = '\x8a' // push long; 1-byte length prefix
	opLong4    Opcode = '\x8b' // push long; 4-byte LE length prefix

	// Protocol 3

	opBinBytes      Opcode = 'B' // push bytes; 4-byte LE length prefix
	opShortBinBytes Opcode = 'C' // push bytes; 1-byte length prefix

	// Protocol 4

	opShortBinUnicode Opcode = '\x8c' // push unicode; 1-byte UTF-8 length prefix
	opBinUnicode8     Opcode = '\x8d' // push unicode; 8-byte LE length prefix
	opBinBytes8       Opcode = '\x8e' // push bytes; 8-byte LE length prefix
	opEmptySet        Opcode = '\x8f' // push empty set
	opAddItems        Opcode = '\x90' // add items above the mark to the set below
	opFrozenSet       Opcode = '\x91' // build frozenset from items above the mark
	opNewObjEx        Opcode = '\x92' // NEWOBJ with kwargs (unsupported)
	opStackGlobal     Opcode = '\x93' // GLOBAL, but names come off the stack (unsupported)
	opMemoize         Opcode = '\x94' // store stack top in memo; next ascending key
	opFrame            Opcode = '\x95' // begin a framed region; 8-byte LE length

	// Protocol 5 (out-of-band buffers excluded per spec Non-goals)

	opByteArray8      Opcode = '\x96' // push bytearray; 8-byte LE length prefix
	opNextBuffer      Opcode = '\x97' // out-of-band buffer (unsupported: Non-goal)
	opReadonlyBuffer  Opcode = '\x98' // out-of-band buffer (unsupported: Non-goal)
)

// unsupportedOpcodeNames names every opcode this core recognizes but refuses to
// interpret, per spec §1's Non-goals (code execution, persistent ids,
// out-of-band buffers) and §4.1's closed rejection list.
var unsupportedOpcodeNames = map[Opcode]string{
	opGlobal:         "GLOBAL",
	opStackGlobal:    "STACK_GLOBAL",
	opReduce:         "REDUCE",
	opBuild:          "BUILD",
	opInst:           "INST",
	opObj:            "OBJ",
	opNewobj:         "NEWOBJ",
	opNewObjEx:       "NEWOBJ_EX",
	opPersid:         "PERSID",
	opBinpersid:      "BINPERSID",
	opExt1:           "EXT1",
	opExt2:           "EXT2",
	opExt4:           "EXT4",
	opNextBuffer:     "NEXT_BUFFER",
	opReadonlyBuffer: "READONLY_BUFFER",
}
