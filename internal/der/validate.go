package der

import "fmt"

// Validate runs the DAG property check, reference resolution, shallow
// opcode arity check, constant-index bounds check, and entry-point
// resolution described in spec.md §4.2/§8 property 3. It is deterministic
// and idempotent, and never mutates p.
func Validate(p *Program) error {
	seen := make(map[uint32]int, len(p.Nodes))
	for pos, n := range p.Nodes {
		if !n.Opcode.Valid() {
			return fmt.Errorf("der: node %d: %w: %d", n.ResultID, ErrUnknownOpcode, n.Opcode)
		}
		if n.ResultID == NoResult {
			return fmt.Errorf("der: node at position %d: result id 0 is reserved", pos)
		}
		if prior, dup := seen[n.ResultID]; dup {
			return fmt.Errorf("der: node at position %d: %w: %d (first seen at %d)", pos, ErrDuplicateResultID, n.ResultID, prior)
		}
		seen[n.ResultID] = pos

		min, max, ok := arityRange(n.Opcode)
		if !ok {
			return fmt.Errorf("der: node %d: %w: %d", n.ResultID, ErrUnknownOpcode, n.Opcode)
		}
		if n.ArgCount < min || n.ArgCount > max {
			return fmt.Errorf("der: node %d (%s): %w: expected %d..%d, got %d", n.ResultID, n.Opcode, ErrBadArity, min, max, n.ArgCount)
		}

		if isConstOpcode(n.Opcode) {
			idx := int(n.Arg(0))
			if idx < 0 || idx >= p.Constants.Len() {
				return fmt.Errorf("der: node %d (%s): %w: %d", n.ResultID, n.Opcode, ErrBadConstantIndex, idx)
			}
			if err := checkConstantKind(n.Opcode, p.Constants.All()[idx].Kind); err != nil {
				return fmt.Errorf("der: node %d: %w", n.ResultID, err)
			}
		}

		for _, argIdx := range refArgIndices(n.Opcode) {
			if argIdx >= int(n.ArgCount) {
				continue
			}
			ref := n.Arg(argIdx)
			refPos, ok := seen[ref]
			if !ok {
				// Might be a forward reference (cycle) or dangling; resolved below.
				if _, existsLater := findLater(p.Nodes, pos, ref); existsLater {
					return fmt.Errorf("der: node %d (%s): %w: arg %d -> %d", n.ResultID, n.Opcode, ErrCycleDetected, argIdx, ref)
				}
				return fmt.Errorf("der: node %d (%s): %w: arg %d -> %d", n.ResultID, n.Opcode, ErrDanglingReference, argIdx, ref)
			}
			if refPos >= pos {
				return fmt.Errorf("der: node %d (%s): %w: arg %d -> %d", n.ResultID, n.Opcode, ErrCycleDetected, argIdx, ref)
			}
		}
	}

	if p.Metadata.EntryResultID != NoResult {
		if _, ok := seen[p.Metadata.EntryResultID]; !ok {
			return fmt.Errorf("der: %w: %d", ErrUnknownEntry, p.Metadata.EntryResultID)
		}
	}

	return nil
}

// findLater reports whether target appears among nodes after position pos,
// used only to distinguish a genuine forward-reference cycle from a
// reference to a result id that does not exist anywhere in the program.
func findLater(nodes []Node, pos int, target uint32) (int, bool) {
	for i := pos + 1; i < len(nodes); i++ {
		if nodes[i].ResultID == target {
			return i, true
		}
	}
	return 0, false
}

func isConstOpcode(op OpCode) bool {
	switch op {
	case OpConstInt, OpConstFloat, OpConstString, OpConstBool:
		return true
	default:
		return false
	}
}

func checkConstantKind(op OpCode, kind ConstantKind) error {
	want := map[OpCode]ConstantKind{
		OpConstInt:    ConstKindInt,
		OpConstFloat:  ConstKindFloat,
		OpConstString: ConstKindString,
		OpConstBool:   ConstKindBool,
	}[op]
	if kind != want {
		return fmt.Errorf("%w: %s expects a %s constant, pool entry is %s", ErrBadConstantKind, op, want, kind)
	}
	return nil
}
