package der

import "errors"

// Sentinel errors for the program model and container layers (§7). Callers
// match them with errors.Is; the container package wraps these with
// positional detail via fmt.Errorf("%w: ...", ErrX, ...).
var (
	ErrBadMagic            = errors.New("der: bad magic")
	ErrUnsupportedVersion  = errors.New("der: unsupported version")
	ErrChunkOutOfBounds    = errors.New("der: chunk out of bounds")
	ErrBadConstantKind     = errors.New("der: bad constant kind")
	ErrBadConstantIndex    = errors.New("der: constant index out of range")
	ErrTruncatedNode       = errors.New("der: truncated node")
	ErrDuplicateResultID   = errors.New("der: duplicate result id")
	ErrDanglingReference   = errors.New("der: dangling reference")
	ErrCycleDetected       = errors.New("der: cycle detected")
	ErrUnknownEntry        = errors.New("der: entry result id is unknown")
	ErrBadArity            = errors.New("der: wrong argument count for opcode")
	ErrUnknownOpcode       = errors.New("der: unknown opcode")
	ErrProgramFinalized    = errors.New("der: program is immutable once execution begins")
)
