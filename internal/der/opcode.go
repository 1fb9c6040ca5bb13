package der

// OpCode identifies the operation a Node performs. Numeric values are part
// of the on-disk contract (§6.3): new opcodes are appended, never renumbered.
type OpCode uint16

const (
	// Constants — args[0] is a constant-pool index.
	OpConstInt    OpCode = iota // load Int64 from pool
	OpConstFloat                // load Float64 from pool
	OpConstString               // load String from pool
	OpConstBool                 // load Bool from pool

	// Arithmetic — both operands Int or both Float, no implicit coercion.
	OpAdd
	OpSub
	OpMul
	OpDiv // integer div-by-zero -> DivisionByZero
	OpMod // integer mod-by-zero -> DivisionByZero

	// Comparison — operands must share a comparable variant; result is Bool.
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	// Memory — heap cells addressed by cell-id.
	OpAlloc // args[0] = literal size immediate (not a node ref); result HeapRef
	OpFree  // args[0] = HeapRef node
	OpLoad  // args[0] = HeapRef node
	OpStore // args[0] = HeapRef node, args[1] = value node

	// Array — heap-backed, mutate in place.
	OpArrayNew // no args; fresh empty array cell
	OpArrayGet // args[0] = array node, args[1] = index node
	OpArraySet // args[0] = array node, args[1] = index node, args[2] = value node

	// Map — keyed by String only.
	OpMapNew // no args; fresh empty map cell
	OpMapGet // args[0] = map node, args[1] = key node (String)
	OpMapSet // args[0] = map node, args[1] = key node (String), args[2] = value node

	// Control flow.
	OpIf     // args[0] = cond, args[1] = then, args[2] = else
	OpLoop   // args[0] = cond, args[1] = body
	OpCall   // args[0] = target node; further actuals bound positionally by the caller
	OpReturn // args[0] = value node; yields that value unchanged, without unwinding the enclosing Call early

	// Async — cooperative, single-threaded.
	OpAsyncBegin    // no args; allocates a Pending token
	OpAsyncComplete // args[0] = token node, args[1] = value node
	OpAsyncAwait    // args[0] = token node

	// I/O — gated by capability bits (§6.5).
	OpPrint     // args[0] = value node; requires UI
	OpRead      // no args; reads a line from stdin; requires UI
	OpFileOpen  // args[0] = path node (String); requires FileSystem
	OpFileRead  // args[0] = path node (String); requires FileSystem
	OpFileWrite // args[0] = path node (String), args[1] = content node (String); requires FileSystem

	// LoadArg reads a positional actual bound by the innermost active Call
	// frame. Appended per §6.3's "new opcodes are appended" rule; present in
	// original_source's binary_format.rs OpCode table (Memory group) but
	// dropped from the distilled spec, leaving Call's "actuals bound
	// positionally" otherwise unreadable by any required opcode.
	OpLoadArg // args[0] = literal positional index, not a node reference

	opCodeCount
)

var opCodeNames = [...]string{
	OpConstInt:      "ConstInt",
	OpConstFloat:    "ConstFloat",
	OpConstString:   "ConstString",
	OpConstBool:     "ConstBool",
	OpAdd:           "Add",
	OpSub:           "Sub",
	OpMul:           "Mul",
	OpDiv:           "Div",
	OpMod:           "Mod",
	OpEq:            "Eq",
	OpNe:            "Ne",
	OpLt:            "Lt",
	OpLe:            "Le",
	OpGt:            "Gt",
	OpGe:            "Ge",
	OpAlloc:         "Alloc",
	OpFree:          "Free",
	OpLoad:          "Load",
	OpStore:         "Store",
	OpArrayNew:      "ArrayNew",
	OpArrayGet:      "ArrayGet",
	OpArraySet:      "ArraySet",
	OpMapNew:        "MapNew",
	OpMapGet:        "MapGet",
	OpMapSet:        "MapSet",
	OpIf:            "If",
	OpLoop:          "Loop",
	OpCall:          "Call",
	OpReturn:        "Return",
	OpAsyncBegin:    "AsyncBegin",
	OpAsyncComplete: "AsyncComplete",
	OpAsyncAwait:    "AsyncAwait",
	OpPrint:         "Print",
	OpRead:          "Read",
	OpFileOpen:      "FileOpen",
	OpFileRead:      "FileRead",
	OpFileWrite:     "FileWrite",
	OpLoadArg:       "LoadArg",
}

// String renders the opcode's canonical mnemonic, used by the disassembler.
func (op OpCode) String() string {
	if int(op) < len(opCodeNames) && opCodeNames[op] != "" {
		return opCodeNames[op]
	}
	return "UNKNOWN"
}

// Valid reports whether op is a recognized opcode.
func (op OpCode) Valid() bool {
	return op < opCodeCount
}

// OpCodeByName resolves a mnemonic to its OpCode, used by the assembler.
func OpCodeByName(name string) (OpCode, bool) {
	for i, n := range opCodeNames {
		if n == name {
			return OpCode(i), true
		}
	}
	return 0, false
}
