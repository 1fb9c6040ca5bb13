package runtime

import "github.com/zxdxjtu/der/internal/der"

// checkArithmeticOperands drives the shallow type check for
// Add/Sub/Mul/Div/Mod (§4.4): both operands Int or both Float, no implicit
// coercion. Comparison and memory/array/map/control/async/I/O opcodes have
// their own per-opcode checks inline in their handlers (ops_arith.go,
// ops_memory.go, control.go, async.go, io.go), since their operand shapes vary
// too much for one shared table entry — the checker is lazy regardless: it
// only ever runs at the moment its own opcode is dispatched, never as a
// whole-graph pre-pass. Enforces "both Int or both Float" and returns
// which kind won.
func checkArithmeticOperands(n der.Node, a, b Value) (ValueKind, error) {
	if a.Kind != KindInt && a.Kind != KindFloat {
		return 0, TypeMismatch(n.ResultID, n.Opcode, "Int or Float", a.Kind.String())
	}
	if a.Kind != b.Kind {
		return 0, TypeMismatch(n.ResultID, n.Opcode, a.Kind.String(), b.Kind.String())
	}
	return a.Kind, nil
}

func requireKind(n der.Node, v Value, want ValueKind) error {
	if v.Kind != want {
		return TypeMismatch(n.ResultID, n.Opcode, want.String(), v.Kind.String())
	}
	return nil
}
