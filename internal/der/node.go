package der

// MaxArgs is the fixed width of a Node's argument list (§3.1).
const MaxArgs = 3

// NoResult is the reserved "none" result id; result ids start at 1.
const NoResult uint32 = 0

// NodeFlag is a reserved bit in Node.Flags. Unknown bits must round-trip
// unchanged — the executor and builder never interpret bits outside this
// set, but they must not be dropped on encode/decode.
type NodeFlag uint16

const (
	FlagIsEntryPoint NodeFlag = 1 << iota
	FlagHasSideEffects
	FlagRequiresProof
)

// Node is the on-disk node record described in spec.md §3.1, written as 29
// bytes (2+2+4+8+1+3×4) by the container's IMPL codec. ResultID is
// the identity other nodes reference from their own Args; Args are
// interpreted per-opcode (node references in the common case, a
// constant-pool index for Const* opcodes, a literal size for Alloc).
type Node struct {
	Opcode    OpCode
	Flags     NodeFlag
	ResultID  uint32
	Timestamp uint64
	ArgCount  uint8
	Args      [MaxArgs]uint32
}

// Arg returns the i-th live argument, or 0 if i >= ArgCount.
func (n Node) Arg(i int) uint32 {
	if i < 0 || i >= int(n.ArgCount) {
		return 0
	}
	return n.Args[i]
}

// HasFlag reports whether f is set in n.Flags.
func (n Node) HasFlag(f NodeFlag) bool {
	return n.Flags&f != 0
}
