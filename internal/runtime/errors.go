package runtime

import (
	"errors"
	"fmt"

	"github.com/zxdxjtu/der/internal/der"
)

// Sentinel errors for the execution-time taxonomy (§7). Each is wrapped
// with positional detail (offending result id, opcode) via fmt.Errorf at
// the point of dispatch so callers can errors.Is/errors.As against the
// sentinel while still printing a useful message.
var (
	ErrTypeMismatch        = errors.New("runtime: type mismatch")
	ErrDivisionByZero      = errors.New("runtime: division by zero")
	ErrOutOfBounds         = errors.New("runtime: index out of bounds")
	ErrKeyNotFound         = errors.New("runtime: map key not found")
	ErrUseAfterFree        = errors.New("runtime: use after free")
	ErrDoubleFree          = errors.New("runtime: double free")
	ErrBadCellID           = errors.New("runtime: unknown heap cell id")
	ErrRefcountUnderflow   = errors.New("runtime: refcount underflow")
	ErrDoubleComplete      = errors.New("runtime: async double-complete")
	ErrAwaitOnPending      = errors.New("runtime: await on pending token")
	ErrAwaitOnMissing      = errors.New("runtime: await on missing token")
	ErrCompleteOnMissing   = errors.New("runtime: complete on missing token")
	ErrCapabilityDenied    = errors.New("runtime: capability denied")
	ErrLoopBudgetExceeded  = errors.New("runtime: loop budget exceeded")
	ErrNodeBudgetExceeded  = errors.New("runtime: node budget exceeded")
	ErrDeadlineExceeded    = errors.New("runtime: deadline exceeded")
	ErrStackOverflow       = errors.New("runtime: call stack overflow")
	ErrNoActiveCallFrame   = errors.New("runtime: LoadArg outside any call frame")
	ErrReentrantEvaluation = errors.New("runtime: result id evaluated re-entrantly")
	ErrIO                  = errors.New("runtime: io error")
	ErrInvalidProgram      = errors.New("runtime: program failed validation")
)

// ExecError carries the taxonomy fields every error surfaces to callers
// (§7): kind, offending result id (0 if none), opcode, and a human string.
type ExecError struct {
	Kind     error
	ResultID uint32
	Opcode   der.OpCode
	Message  string
}

func (e *ExecError) Error() string {
	if e.ResultID == der.NoResult {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: node %d (%s): %s", e.Kind, e.ResultID, e.Opcode, e.Message)
}

func (e *ExecError) Unwrap() error { return e.Kind }

func execErr(kind error, resultID uint32, op der.OpCode, format string, args ...any) *ExecError {
	return &ExecError{
		Kind:     kind,
		ResultID: resultID,
		Opcode:   op,
		Message:  fmt.Sprintf(format, args...),
	}
}

// TypeMismatch builds the TypeMismatch{opcode, expected, actual} error
// named in §4.4/§7.
func TypeMismatch(resultID uint32, op der.OpCode, expected, actual string) *ExecError {
	return execErr(ErrTypeMismatch, resultID, op, "expected %s, got %s", expected, actual)
}
