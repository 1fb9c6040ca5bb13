package runtime

import "github.com/zxdxjtu/der/internal/der"

// evalAlloc implements Alloc(size): size is a literal immediate baked into
// the node at build time (§3.1's "allocation-size ... opcodes" carve-out),
// yielding a fresh HeapRef to a zeroed Bytes cell (§4.3).
func (e *Executor) evalAlloc(n der.Node, size uint32) (Value, error) {
	return e.heap.Alloc(int64(size)), nil
}

// evalFree implements Free(cell): args[0] must be a live HeapRef.
func (e *Executor) evalFree(n der.Node, ref Value) (Value, error) {
	if err := requireKind(n, ref, KindHeapRef); err != nil {
		return Value{}, err
	}
	if err := e.heap.Free(ref.Cell); err != nil {
		return Value{}, execErr(err, n.ResultID, n.Opcode, "cell #%d", ref.Cell)
	}
	return Nil(), nil
}

// evalLoad implements Load(cell): args[0] must be a live HeapRef.
func (e *Executor) evalLoad(n der.Node, ref Value) (Value, error) {
	if err := requireKind(n, ref, KindHeapRef); err != nil {
		return Value{}, err
	}
	v, err := e.heap.Load(ref.Cell)
	if err != nil {
		return Value{}, execErr(err, n.ResultID, n.Opcode, "cell #%d", ref.Cell)
	}
	return v, nil
}

// evalStore implements Store(cell, value): args[0] must be a live HeapRef.
func (e *Executor) evalStore(n der.Node, ref, value Value) (Value, error) {
	if err := requireKind(n, ref, KindHeapRef); err != nil {
		return Value{}, err
	}
	if err := e.heap.Store(ref.Cell, value); err != nil {
		return Value{}, execErr(err, n.ResultID, n.Opcode, "cell #%d", ref.Cell)
	}
	return value, nil
}

// evalArrayGet implements ArrayGet(arr, i): out-of-bounds is an error.
func (e *Executor) evalArrayGet(n der.Node, arr, idx Value) (Value, error) {
	if err := requireKind(n, arr, KindArray); err != nil {
		return Value{}, err
	}
	if err := requireKind(n, idx, KindInt); err != nil {
		return Value{}, err
	}
	v, err := e.heap.ArrayGet(arr.Cell, idx.Int)
	if err != nil {
		return Value{}, execErr(err, n.ResultID, n.Opcode, "index %d", idx.Int)
	}
	return v, nil
}

// evalArraySet implements ArraySet(arr, i, v): mutates the heap cell
// in-place; the program model itself stays immutable (§4.3).
func (e *Executor) evalArraySet(n der.Node, arr, idx, v Value) (Value, error) {
	if err := requireKind(n, arr, KindArray); err != nil {
		return Value{}, err
	}
	if err := requireKind(n, idx, KindInt); err != nil {
		return Value{}, err
	}
	if err := e.heap.ArraySet(arr.Cell, idx.Int, v); err != nil {
		return Value{}, execErr(err, n.ResultID, n.Opcode, "index %d", idx.Int)
	}
	return v, nil
}

// evalMapGet implements MapGet(map, key): missing key is KeyNotFound
// (§9.1 decision).
func (e *Executor) evalMapGet(n der.Node, m, key Value) (Value, error) {
	if err := requireKind(n, m, KindMap); err != nil {
		return Value{}, err
	}
	if err := requireKind(n, key, KindString); err != nil {
		return Value{}, err
	}
	v, err := e.heap.MapGet(m.Cell, key.Str)
	if err != nil {
		return Value{}, execErr(err, n.ResultID, n.Opcode, "key %q", key.Str)
	}
	return v, nil
}

// evalMapSet implements MapSet(map, key, value).
func (e *Executor) evalMapSet(n der.Node, m, key, v Value) (Value, error) {
	if err := requireKind(n, m, KindMap); err != nil {
		return Value{}, err
	}
	if err := requireKind(n, key, KindString); err != nil {
		return Value{}, err
	}
	if err := e.heap.MapSet(m.Cell, key.Str, v); err != nil {
		return Value{}, execErr(err, n.ResultID, n.Opcode, "key %q", key.Str)
	}
	return v, nil
}
