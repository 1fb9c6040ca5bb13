package runtime

import (
	"math"

	"github.com/zxdxjtu/der/internal/der"
)

// evalArithmetic implements Add/Sub/Mul/Div/Mod (§4.3): both operands Int
// or both Float, no implicit coercion, same result kind as the operands.
// Integer overflow wraps (Go's native int64 arithmetic); integer Div/Mod
// by zero is DivisionByZero. Float follows IEEE-754 throughout, including
// division by zero producing +Inf/-Inf/NaN rather than an error.
func (e *Executor) evalArithmetic(n der.Node, a, b Value) (Value, error) {
	kind, err := checkArithmeticOperands(n, a, b)
	if err != nil {
		return Value{}, err
	}
	if kind == KindInt {
		return e.evalIntArithmetic(n, a.Int, b.Int)
	}
	return e.evalFloatArithmetic(n, a.Float, b.Float)
}

func (e *Executor) evalIntArithmetic(n der.Node, a, b int64) (Value, error) {
	switch n.Opcode {
	case der.OpAdd:
		return IntValue(a + b), nil
	case der.OpSub:
		return IntValue(a - b), nil
	case der.OpMul:
		return IntValue(a * b), nil
	case der.OpDiv:
		if b == 0 {
			return Value{}, execErr(ErrDivisionByZero, n.ResultID, n.Opcode, "%d / 0", a)
		}
		return IntValue(a / b), nil
	case der.OpMod:
		if b == 0 {
			return Value{}, execErr(ErrDivisionByZero, n.ResultID, n.Opcode, "%d %% 0", a)
		}
		return IntValue(a % b), nil
	default:
		return Value{}, execErr(ErrInvalidProgram, n.ResultID, n.Opcode, "not an arithmetic opcode")
	}
}

func (e *Executor) evalFloatArithmetic(n der.Node, a, b float64) (Value, error) {
	switch n.Opcode {
	case der.OpAdd:
		return FloatValue(a + b), nil
	case der.OpSub:
		return FloatValue(a - b), nil
	case der.OpMul:
		return FloatValue(a * b), nil
	case der.OpDiv:
		return FloatValue(a / b), nil
	case der.OpMod:
		return FloatValue(math.Mod(a, b)), nil
	default:
		return Value{}, execErr(ErrInvalidProgram, n.ResultID, n.Opcode, "not an arithmetic opcode")
	}
}

// evalEquality implements Eq/Ne (§4.3): operands must share a comparable,
// equal variant; Nil equals only Nil; strings compare by byte; floats are
// strict IEEE-754 (§9.5 decision — NaN != NaN).
func (e *Executor) evalEquality(n der.Node, a, b Value) (Value, error) {
	eq, ok := a.Equal(b)
	if !ok {
		return Value{}, TypeMismatch(n.ResultID, n.Opcode, a.Kind.String(), b.Kind.String())
	}
	if n.Opcode == der.OpNe {
		eq = !eq
	}
	return BoolValue(eq), nil
}

// evalOrdering implements Lt/Le/Gt/Ge over Int, Float, and String operands.
// Each direction is evaluated with its own native Go operator rather than
// derived from Less+Equal, so IEEE-754 NaN comparisons come out false in
// every direction (NaN < x, NaN <= x, NaN > x, NaN >= x are all false),
// matching strict IEEE-754 semantics instead of a total order.
func (e *Executor) evalOrdering(n der.Node, a, b Value) (Value, error) {
	if a.Kind != b.Kind {
		return Value{}, TypeMismatch(n.ResultID, n.Opcode, a.Kind.String(), b.Kind.String())
	}
	switch a.Kind {
	case KindInt:
		return BoolValue(orderInt(n.Opcode, a.Int, b.Int)), nil
	case KindFloat:
		return BoolValue(orderFloat(n.Opcode, a.Float, b.Float)), nil
	case KindString:
		return BoolValue(orderString(n.Opcode, a.Str, b.Str)), nil
	default:
		return Value{}, TypeMismatch(n.ResultID, n.Opcode, "Int, Float, or String", a.Kind.String())
	}
}

func orderInt(op der.OpCode, a, b int64) bool {
	switch op {
	case der.OpLt:
		return a < b
	case der.OpLe:
		return a <= b
	case der.OpGt:
		return a > b
	default:
		return a >= b
	}
}

func orderFloat(op der.OpCode, a, b float64) bool {
	switch op {
	case der.OpLt:
		return a < b
	case der.OpLe:
		return a <= b
	case der.OpGt:
		return a > b
	default:
		return a >= b
	}
}

func orderString(op der.OpCode, a, b string) bool {
	switch op {
	case der.OpLt:
		return a < b
	case der.OpLe:
		return a <= b
	case der.OpGt:
		return a > b
	default:
		return a >= b
	}
}
