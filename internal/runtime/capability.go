package runtime

import "github.com/zxdxjtu/der/internal/der"

// opcodeCapability maps an I/O opcode to the capability bit dispatch must
// check (§6.5 decision, not stated explicitly beyond the Print/UI example
// in spec.md §8 scenario 4): Print/Read require UI (terminal I/O);
// File{Open,Read,Write} require FileSystem. Network/Process/ExternalCode
// are declared-but-unconsumed bits, matching original_source's Capability
// enum defining more variants than its executor branches on.
func opcodeCapability(op der.OpCode) (der.CapabilitySet, bool) {
	switch op {
	case der.OpPrint, der.OpRead:
		return der.CapUI, true
	case der.OpFileOpen, der.OpFileRead, der.OpFileWrite:
		return der.CapFileSystem, true
	default:
		return 0, false
	}
}

// checkCapability returns ErrCapabilityDenied wrapped via ExecError if the
// program's declared capability set lacks the bit op requires. Missing
// capability halts execution; it is never a silent skip (§4.3 "Side
// effects").
func (e *Executor) checkCapability(n der.Node) error {
	required, ok := opcodeCapability(n.Opcode)
	if !ok {
		return nil
	}
	if e.program.Metadata.Capabilities.Has(required) {
		return nil
	}
	return execErr(ErrCapabilityDenied, n.ResultID, n.Opcode, "requires %s capability", required)
}
