// Package runtime is the demand-driven executor for der.Program graphs:
// value cache, heap cell arena, async token table, call frames, and the
// shallow type checker described in spec.md §4.3/§4.4.
package runtime

import "strconv"

// ValueKind tags the variant held by a Value (§3.4).
type ValueKind int

const (
	KindNil ValueKind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	KindHeapRef
	KindArray
	KindMap
	KindAsyncToken
)

func (k ValueKind) String() string {
	switch k {
	case KindNil:
		return "Nil"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindBool:
		return "Bool"
	case KindString:
		return "String"
	case KindHeapRef:
		return "HeapRef"
	case KindArray:
		return "Array"
	case KindMap:
		return "Map"
	case KindAsyncToken:
		return "AsyncToken"
	default:
		return "Unknown"
	}
}

// Value is the tagged union used only inside the executor (§3.4). Exactly
// one field is meaningful, selected by Kind; HeapRef/Array/Map share Cell,
// since all three are addressed by the same heap-cell arena.
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Bool  bool
	Str   string
	Cell  CellID
	Token TokenID
}

func Nil() Value                  { return Value{Kind: KindNil} }
func IntValue(v int64) Value      { return Value{Kind: KindInt, Int: v} }
func FloatValue(v float64) Value  { return Value{Kind: KindFloat, Float: v} }
func BoolValue(v bool) Value      { return Value{Kind: KindBool, Bool: v} }
func StringValue(v string) Value  { return Value{Kind: KindString, Str: v} }
func HeapRefValue(c CellID) Value { return Value{Kind: KindHeapRef, Cell: c} }
func ArrayValue(c CellID) Value   { return Value{Kind: KindArray, Cell: c} }
func MapValue(c CellID) Value     { return Value{Kind: KindMap, Cell: c} }
func AsyncTokenValue(t TokenID) Value {
	return Value{Kind: KindAsyncToken, Token: t}
}

// IsHeapKind reports whether v's variant is backed by a heap cell and must
// be retained/released as it moves between owners (§3.5).
func (v Value) IsHeapKind() bool {
	switch v.Kind {
	case KindHeapRef, KindArray, KindMap:
		return true
	default:
		return false
	}
}

// Truthy implements the predicate used by If/Loop conditions and Print's
// boolean coercion-free canonical form; only Bool is accepted by those
// opcodes (§4.3's "require Bool" language) — this helper is used solely by
// the shallow type checker to render a clear TypeMismatch, never to coerce.
func (v Value) Truthy() (bool, bool) {
	if v.Kind != KindBool {
		return false, false
	}
	return v.Bool, true
}

// Equal implements the comparison-opcode equality rule (§4.3, §9.5):
// operands must share a variant; Nil equals only Nil; strings compare by
// byte; floats follow strict IEEE-754 (NaN != NaN).
func (v Value) Equal(other Value) (bool, bool) {
	if v.Kind != other.Kind {
		return false, false
	}
	switch v.Kind {
	case KindNil:
		return true, true
	case KindInt:
		return v.Int == other.Int, true
	case KindFloat:
		return v.Float == other.Float, true
	case KindBool:
		return v.Bool == other.Bool, true
	case KindString:
		return v.Str == other.Str, true
	case KindHeapRef, KindArray, KindMap:
		return v.Cell == other.Cell, true
	case KindAsyncToken:
		return v.Token == other.Token, true
	default:
		return false, false
	}
}

// String renders the canonical to_string used by Print and the
// disassembler/inspector (§6.4): integers base 10, floats shortest
// round-trip decimal, strings unquoted, booleans true/false, Nil empty,
// heap refs "<cell #n>".
func (v Value) String() string {
	switch v.Kind {
	case KindNil:
		return ""
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindString:
		return v.Str
	case KindHeapRef, KindArray, KindMap:
		return "<cell #" + strconv.FormatUint(uint64(v.Cell), 10) + ">"
	case KindAsyncToken:
		return "<token #" + strconv.FormatUint(uint64(v.Token), 10) + ">"
	default:
		return "<unknown>"
	}
}
