package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/zxdxjtu/der/internal/der"
)

func build(t *testing.T, fn func(b *der.Builder)) *der.Program {
	t.Helper()
	b := der.NewBuilder()
	fn(b)
	p, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return p
}

// scenario 1: c0=Int(10), c1=Int(20), n3=Add(n1,n2) -> Int(30)
func TestExecuteAddConstants(t *testing.T) {
	var entry uint32
	p := build(t, func(b *der.Builder) {
		c0 := b.AddConstant(der.ConstInt(10))
		c1 := b.AddConstant(der.ConstInt(20))
		n1 := b.AddNode(der.OpConstInt, uint32(c0))
		n2 := b.AddNode(der.OpConstInt, uint32(c1))
		entry = b.AddNode(der.OpAdd, n1, n2)
		b.SetEntry(entry)
	})

	exec, err := New(p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v, err := exec.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if v.Kind != KindInt || v.Int != 30 {
		t.Fatalf("Execute() = %+v, want Int(30)", v)
	}
}

// scenario 2: (10+20)*(30-25) -> Int(150)
func TestExecuteArithmeticTree(t *testing.T) {
	var entry uint32
	p := build(t, func(b *der.Builder) {
		c10 := b.AddConstant(der.ConstInt(10))
		c20 := b.AddConstant(der.ConstInt(20))
		c30 := b.AddConstant(der.ConstInt(30))
		c25 := b.AddConstant(der.ConstInt(25))
		n10 := b.AddNode(der.OpConstInt, uint32(c10))
		n20 := b.AddNode(der.OpConstInt, uint32(c20))
		n30 := b.AddNode(der.OpConstInt, uint32(c30))
		n25 := b.AddNode(der.OpConstInt, uint32(c25))
		add := b.AddNode(der.OpAdd, n10, n20)
		sub := b.AddNode(der.OpSub, n30, n25)
		entry = b.AddNode(der.OpMul, add, sub)
		b.SetEntry(entry)
	})

	exec, err := New(p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v, err := exec.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if v.Kind != KindInt || v.Int != 150 {
		t.Fatalf("Execute() = %+v, want Int(150)", v)
	}
}

// scenario 3: Div(7, 0) -> DivisionByZero
func TestExecuteDivisionByZero(t *testing.T) {
	var entry uint32
	p := build(t, func(b *der.Builder) {
		c7 := b.AddConstant(der.ConstInt(7))
		c0 := b.AddConstant(der.ConstInt(0))
		n7 := b.AddNode(der.OpConstInt, uint32(c7))
		n0 := b.AddNode(der.OpConstInt, uint32(c0))
		entry = b.AddNode(der.OpDiv, n7, n0)
		b.SetEntry(entry)
	})

	exec, err := New(p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = exec.Execute(context.Background())
	if !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("Execute() err = %v, want wrapping ErrDivisionByZero", err)
	}
}

// scenario 4: If(true, Print("A"), Print("B")) under UI -> stdout == "A\n"
func TestExecuteIfIsLazy(t *testing.T) {
	var entry uint32
	p := build(t, func(b *der.Builder) {
		b.RequireCapability(der.CapUI)
		cTrue := b.AddConstant(der.ConstBool(true))
		cA := b.AddConstant(der.ConstString("A"))
		cB := b.AddConstant(der.ConstString("B"))
		cond := b.AddNode(der.OpConstBool, uint32(cTrue))
		strA := b.AddNode(der.OpConstString, uint32(cA))
		strB := b.AddNode(der.OpConstString, uint32(cB))
		printA := b.AddNode(der.OpPrint, strA)
		printB := b.AddNode(der.OpPrint, strB)
		entry = b.AddNode(der.OpIf, cond, printA, printB)
		b.SetEntry(entry)
	})

	var out outBuffer
	exec, err := New(p, WithStdout(&out))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := exec.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.String() != "A\n" {
		t.Fatalf("stdout = %q, want %q", out.String(), "A\n")
	}
}

// scenario 5: Loop(cond=Lt(counter,3), body=increment) -> counter reaches 3.
// Drives evaluation directly via the package-private eval so the heap cell
// can be inspected before Execute's teardown releases it.
func TestExecuteLoopIncrementsCounterToThree(t *testing.T) {
	var entry, alloc uint32
	p := build(t, func(b *der.Builder) {
		c0 := b.AddConstant(der.ConstInt(0))
		c1 := b.AddConstant(der.ConstInt(1))
		c3 := b.AddConstant(der.ConstInt(3))

		allocID := b.AddNode(der.OpAlloc, 8)
		zero := b.AddNode(der.OpConstInt, uint32(c0))
		storeZero := b.AddNode(der.OpStore, allocID, zero)
		// Sequencing a one-time store ahead of a Loop has no dedicated
		// opcode; folding it into If's unconditionally-evaluated cond forces
		// it to run exactly once, before Loop's cond/body ever see the cell.
		initCond := b.AddNode(der.OpEq, storeZero, zero)

		one := b.AddNode(der.OpConstInt, uint32(c1))
		three := b.AddNode(der.OpConstInt, uint32(c3))
		load := b.AddNode(der.OpLoad, allocID)
		cond := b.AddNode(der.OpLt, load, three)

		loadForIncr := b.AddNode(der.OpLoad, allocID)
		incr := b.AddNode(der.OpAdd, loadForIncr, one)
		body := b.AddNode(der.OpStore, allocID, incr)

		loop := b.AddNode(der.OpLoop, cond, body)
		entry = b.AddNode(der.OpIf, initCond, loop, loop)
		b.SetEntry(entry)
		alloc = allocID
	})

	exec, err := New(p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if _, err := exec.eval(ctx, entry); err != nil {
		t.Fatalf("eval(entry): %v", err)
	}
	ref, err := exec.eval(ctx, alloc)
	if err != nil {
		t.Fatalf("eval(alloc): %v", err)
	}
	final, err := exec.heap.Load(ref.Cell)
	if err != nil {
		t.Fatalf("heap.Load: %v", err)
	}
	if final.Kind != KindInt || final.Int != 3 {
		t.Fatalf("final counter = %+v, want Int(3)", final)
	}
}

// scenario 6: planted cycle n1.args=[n2], n2.args=[n1] -> CycleDetected
func TestValidateRejectsPlantedCycle(t *testing.T) {
	p := der.NewProgram()
	p.Nodes = []der.Node{
		{Opcode: der.OpFree, ResultID: 1, ArgCount: 1, Args: [3]uint32{2}},
		{Opcode: der.OpFree, ResultID: 2, ArgCount: 1, Args: [3]uint32{1}},
	}
	_, err := New(p)
	if !errors.Is(err, ErrInvalidProgram) {
		t.Fatalf("New() err = %v, want wrapping ErrInvalidProgram", err)
	}
}

// universal property 4: memoization — each result id evaluated at most once.
func TestExecuteMemoizesSharedSubexpression(t *testing.T) {
	var entry uint32
	p := build(t, func(b *der.Builder) {
		b.RequireCapability(der.CapUI)
		c1 := b.AddConstant(der.ConstInt(1))
		n1 := b.AddNode(der.OpConstInt, uint32(c1))
		printed := b.AddNode(der.OpPrint, n1)
		entry = b.AddNode(der.OpAdd, printed, printed)
		b.SetEntry(entry)
	})

	var out outBuffer
	exec, err := New(p, WithStdout(&out))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v, err := exec.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.String() != "1\n" {
		t.Fatalf("stdout = %q, want exactly one print of \"1\\n\"", out.String())
	}
	if v.Kind != KindInt || v.Int != 2 {
		t.Fatalf("Execute() = %+v, want Int(2)", v)
	}
}

// universal property 7: capability gate.
func TestExecutePrintWithoutCapabilityDenied(t *testing.T) {
	var entry uint32
	p := build(t, func(b *der.Builder) {
		c := b.AddConstant(der.ConstString("x"))
		n := b.AddNode(der.OpConstString, uint32(c))
		entry = b.AddNode(der.OpPrint, n)
		b.SetEntry(entry)
	})

	var out outBuffer
	exec, err := New(p, WithStdout(&out))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = exec.Execute(context.Background())
	if !errors.Is(err, ErrCapabilityDenied) {
		t.Fatalf("Execute() err = %v, want wrapping ErrCapabilityDenied", err)
	}
	if out.String() != "" {
		t.Fatalf("stdout = %q, want empty (no side effect on denial)", out.String())
	}
}

// universal property 6: refcount soundness — a freed cell's allocation does
// not leave the heap with any live cells.
func TestHeapLiveCountReturnsToZeroAfterFree(t *testing.T) {
	var entry uint32
	p := build(t, func(b *der.Builder) {
		alloc := b.AddNode(der.OpAlloc, 8)
		entry = b.AddNode(der.OpFree, alloc)
		b.SetEntry(entry)
	})

	exec, err := New(p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := exec.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if n := exec.Heap().LiveCount(); n != 0 {
		t.Fatalf("LiveCount() = %d, want 0", n)
	}
}

type outBuffer struct {
	data []byte
}

func (o *outBuffer) Write(p []byte) (int, error) {
	o.data = append(o.data, p...)
	return len(p), nil
}

func (o *outBuffer) String() string { return string(o.data) }
