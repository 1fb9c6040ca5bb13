package runtime

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/zxdxjtu/der/internal/der"
)

// Default resource bounds (§5, §8): a configurable loop-iteration bound
// and call-depth bound, both overridable via Option.
const (
	DefaultMaxLoopIterations = 1_000_000
	DefaultMaxCallDepth      = 1024
)

// Option configures an Executor at construction time.
type Option func(*Executor)

// WithMaxLoopIterations overrides the per-Loop-node iteration bound.
func WithMaxLoopIterations(n uint64) Option {
	return func(e *Executor) { e.maxLoopIterations = n }
}

// WithMaxCallDepth overrides the Call nesting bound.
func WithMaxCallDepth(n int) Option {
	return func(e *Executor) { e.calls = newCallStack(n) }
}

// WithNodeBudget caps the total number of node evaluations across one
// Execute/ExecuteNode call; exceeding it raises NodeBudgetExceeded (§5).
func WithNodeBudget(n uint64) Option {
	return func(e *Executor) { e.nodeBudget = n }
}

// WithDeadline sets a wall-clock deadline; exceeding it raises
// DeadlineExceeded (§5). Checked cooperatively between node evaluations,
// not preemptively.
func WithDeadline(d time.Time) Option {
	return func(e *Executor) { e.deadline = d }
}

// WithStdout/WithStdin redirect Print/Read; default to os.Stdout/os.Stdin.
func WithStdout(w io.Writer) Option { return func(e *Executor) { e.stdout = w } }
func WithStdin(r io.Reader) Option  { return func(e *Executor) { e.stdin = bufio.NewReader(r) } }

// WithWorkDir scopes FileOpen/FileRead/FileWrite path resolution; default
// is the process's current directory (paths used as-is).
func WithWorkDir(dir string) Option { return func(e *Executor) { e.workDir = dir } }

// Executor is the single-threaded, cooperative, demand-driven evaluator
// described in spec.md §4.3. It takes ownership of a validated Program and
// is not safe for concurrent use; run Program.Clone() onto a fresh
// Executor per goroutine for parallel runs (§5).
type Executor struct {
	program *der.Program

	cache      map[uint32]Value
	evaluating map[uint32]bool

	heap  *Heap
	async *AsyncTable
	calls *callStack

	openFiles map[uint32]*openFile

	maxLoopIterations uint64
	nodeBudget        uint64
	nodesEvaluated    uint64
	deadline          time.Time

	stdout  io.Writer
	stdin   *bufio.Reader
	workDir string
}

type openFile struct {
	path string
}

// New takes ownership of program, rejecting it if it fails der.Validate.
func New(program *der.Program, opts ...Option) (*Executor, error) {
	if err := der.Validate(program); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProgram, err)
	}
	e := &Executor{
		program:           program,
		cache:             make(map[uint32]Value),
		evaluating:        make(map[uint32]bool),
		heap:              NewHeap(),
		async:             NewAsyncTable(),
		calls:             newCallStack(DefaultMaxCallDepth),
		openFiles:         make(map[uint32]*openFile),
		maxLoopIterations: DefaultMaxLoopIterations,
		stdout:            os.Stdout,
		stdin:             bufio.NewReader(os.Stdin),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Heap exposes the executor's heap arena for diagnostics and tests
// (§8 property 6, live-cell assertions).
func (e *Executor) Heap() *Heap { return e.heap }

// Execute runs from the program's declared entry point (§4.3 public
// contract). The cache is cleared on return, releasing every heap-kind
// value it held (§4.3.1).
func (e *Executor) Execute(ctx context.Context) (Value, error) {
	return e.ExecuteNode(ctx, e.program.Metadata.EntryResultID)
}

// ExecuteNode runs from an arbitrary node, for testing and visualization
// (§4.3 public contract). Marks the program started on first call.
func (e *Executor) ExecuteNode(ctx context.Context, resultID uint32) (Value, error) {
	e.program.MarkStarted()
	defer e.teardown()

	v, err := e.eval(ctx, resultID)
	if err != nil {
		return Value{}, err
	}
	return v, nil
}

// teardown releases the cache's ownership of every heap-kind cached value
// (§4.3.1: "cache is cleared; any still-live cells indicate an intentional
// leak or external retention").
func (e *Executor) teardown() {
	for _, v := range e.cache {
		e.heap.Release(v)
	}
	e.cache = make(map[uint32]Value)
}

func (e *Executor) nodeByResultID(resultID uint32) (der.Node, error) {
	n, ok := e.program.NodeByResultID(resultID)
	if !ok {
		return der.Node{}, fmt.Errorf("runtime: unknown result id %d", resultID)
	}
	return n, nil
}

// checkBudgets is consulted once per node evaluation, ahead of dispatch.
func (e *Executor) checkBudgets(ctx context.Context, n der.Node) error {
	if err := ctx.Err(); err != nil {
		return execErr(ErrDeadlineExceeded, n.ResultID, n.Opcode, "context: %v", err)
	}
	if !e.deadline.IsZero() && time.Now().After(e.deadline) {
		return execErr(ErrDeadlineExceeded, n.ResultID, n.Opcode, "wall-clock deadline exceeded")
	}
	if e.nodeBudget != 0 && e.nodesEvaluated >= e.nodeBudget {
		return execErr(ErrNodeBudgetExceeded, n.ResultID, n.Opcode, "exceeded budget of %d nodes", e.nodeBudget)
	}
	return nil
}

// eval is the recursive, memoized node evaluator (§4.3 algorithm). The
// control flow opcodes If, Loop, and Call evaluate their own operand nodes
// in their own order rather than following the uniform "evaluate every arg
// left-to-right" path every other opcode (Return and AsyncAwait included)
// takes — that is what makes If lazy and Loop re-entrant. LoadArg reads
// the innermost call frame instead of evaluating an argument.
func (e *Executor) eval(ctx context.Context, resultID uint32) (Value, error) {
	if v, ok := e.cache[resultID]; ok {
		return v, nil
	}
	if e.evaluating[resultID] {
		return Value{}, fmt.Errorf("%w: %d", ErrReentrantEvaluation, resultID)
	}

	n, err := e.nodeByResultID(resultID)
	if err != nil {
		return Value{}, err
	}

	if err := e.checkBudgets(ctx, n); err != nil {
		return Value{}, err
	}
	e.nodesEvaluated++

	e.evaluating[resultID] = true
	defer delete(e.evaluating, resultID)

	if err := e.checkCapability(n); err != nil {
		return Value{}, err
	}

	var v Value
	switch n.Opcode {
	case der.OpIf:
		v, err = e.evalIf(ctx, n)
	case der.OpLoop:
		v, err = e.evalLoop(ctx, n)
	case der.OpCall:
		v, err = e.evalCall(ctx, n)
	case der.OpReturn:
		v, err = e.evalUnary(ctx, n, func(a Value) (Value, error) { return a, nil })
	case der.OpLoadArg:
		v, err = e.calls.arg(int(n.Arg(0)))
	default:
		v, err = e.evalGeneric(ctx, n)
	}
	if err != nil {
		return Value{}, err
	}

	e.cache[resultID] = v
	return v, nil
}

// evalArgs evaluates every node-reference argument of n left-to-right,
// per the default ordering contract (§5 "Ordering").
func (e *Executor) evalArgs(ctx context.Context, n der.Node) ([]Value, error) {
	out := make([]Value, n.ArgCount)
	for i := 0; i < int(n.ArgCount); i++ {
		v, err := e.eval(ctx, n.Arg(i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *Executor) evalUnary(ctx context.Context, n der.Node, f func(Value) (Value, error)) (Value, error) {
	args, err := e.evalArgs(ctx, n)
	if err != nil {
		return Value{}, err
	}
	return f(args[0])
}

// evalGeneric dispatches every opcode that follows the uniform
// "evaluate-then-dispatch" path (§4.3 step 2-3): constants, arithmetic,
// comparison, memory, array, map, async, I/O.
func (e *Executor) evalGeneric(ctx context.Context, n der.Node) (Value, error) {
	switch {
	case isConstOpcode(n.Opcode):
		return e.evalConst(n)
	case n.Opcode == der.OpAlloc:
		// args[0] is a literal size immediate, not a node reference — see
		// internal/der/arity.go's refArgIndices, which excludes Alloc from
		// the DAG/reference-resolution walk for the same reason.
		return e.evalAlloc(n, n.Arg(0))
	}

	args, err := e.evalArgs(ctx, n)
	if err != nil {
		return Value{}, err
	}

	switch n.Opcode {
	case der.OpAdd, der.OpSub, der.OpMul, der.OpDiv, der.OpMod:
		return e.evalArithmetic(n, args[0], args[1])
	case der.OpEq, der.OpNe:
		return e.evalEquality(n, args[0], args[1])
	case der.OpLt, der.OpLe, der.OpGt, der.OpGe:
		return e.evalOrdering(n, args[0], args[1])
	case der.OpFree:
		return e.evalFree(n, args[0])
	case der.OpLoad:
		return e.evalLoad(n, args[0])
	case der.OpStore:
		return e.evalStore(n, args[0], args[1])
	case der.OpArrayNew:
		return e.heap.ArrayNew(), nil
	case der.OpArrayGet:
		return e.evalArrayGet(n, args[0], args[1])
	case der.OpArraySet:
		return e.evalArraySet(n, args[0], args[1], args[2])
	case der.OpMapNew:
		return e.heap.MapNew(), nil
	case der.OpMapGet:
		return e.evalMapGet(n, args[0], args[1])
	case der.OpMapSet:
		return e.evalMapSet(n, args[0], args[1], args[2])
	case der.OpAsyncBegin:
		return e.async.Begin(), nil
	case der.OpAsyncComplete:
		return e.evalAsyncComplete(n, args[0], args[1])
	case der.OpAsyncAwait:
		return e.evalAsyncAwait(n, args[0])
	case der.OpPrint:
		return e.evalPrint(args[0])
	case der.OpRead:
		return e.evalRead()
	case der.OpFileOpen:
		return e.evalFileOpen(n, args[0])
	case der.OpFileRead:
		return e.evalFileRead(n, args[0])
	case der.OpFileWrite:
		return e.evalFileWrite(n, args[0], args[1])
	default:
		return Value{}, fmt.Errorf("%w: %s", ErrInvalidProgram, n.Opcode)
	}
}

func isConstOpcode(op der.OpCode) bool {
	switch op {
	case der.OpConstInt, der.OpConstFloat, der.OpConstString, der.OpConstBool:
		return true
	default:
		return false
	}
}

func (e *Executor) evalConst(n der.Node) (Value, error) {
	c, err := e.program.Constants.Get(int(n.Arg(0)))
	if err != nil {
		return Value{}, err
	}
	switch n.Opcode {
	case der.OpConstInt:
		return IntValue(c.Int), nil
	case der.OpConstFloat:
		return FloatValue(c.Flt), nil
	case der.OpConstString:
		return StringValue(c.Str), nil
	case der.OpConstBool:
		return BoolValue(c.Bool), nil
	default:
		return Value{}, fmt.Errorf("%w: %s", ErrInvalidProgram, n.Opcode)
	}
}
