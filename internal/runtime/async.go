package runtime

import "github.com/zxdxjtu/der/internal/der"

// TokenID addresses a slot in the AsyncTable (§3.4, §4.3.3).
type TokenID uint64

// AsyncState is the token's position in the Pending -> Ready -> consumed
// state machine (§4.3.3). There is no Consumed constant: a consumed token
// is removed from the table entirely, matching the state diagram's
// "consumed (removed)" terminal.
type AsyncState int

const (
	AsyncPending AsyncState = iota
	AsyncReady
)

func (s AsyncState) String() string {
	if s == AsyncReady {
		return "Ready"
	}
	return "Pending"
}

type asyncSlot struct {
	state AsyncState
	value Value
}

// AsyncTable is the executor-owned table of cooperative async tokens
// (§4.3.2, §4.3.3). It introduces no goroutines or real concurrency: it is
// a deterministic state machine over a map, exactly as spec.md §9's design
// note requires ("async without a scheduler").
type AsyncTable struct {
	slots  map[TokenID]*asyncSlot
	nextID TokenID
}

func NewAsyncTable() *AsyncTable {
	return &AsyncTable{slots: make(map[TokenID]*asyncSlot)}
}

// Begin allocates a new Pending token.
func (a *AsyncTable) Begin() Value {
	a.nextID++
	id := a.nextID
	a.slots[id] = &asyncSlot{state: AsyncPending, value: Nil()}
	return AsyncTokenValue(id)
}

// Complete transitions token to Ready(value). Double-complete (already
// Ready) or completing an unknown/consumed token is an error.
func (a *AsyncTable) Complete(token TokenID, value Value) error {
	slot, ok := a.slots[token]
	if !ok {
		return ErrCompleteOnMissing
	}
	if slot.state == AsyncReady {
		return ErrDoubleComplete
	}
	slot.state = AsyncReady
	slot.value = value
	return nil
}

// Await returns the Ready value and removes the token (consumed). Awaiting
// a Pending token is an error — single-threaded, nothing else can resolve
// it — as is awaiting an unknown/already-consumed token.
func (a *AsyncTable) Await(token TokenID) (Value, error) {
	slot, ok := a.slots[token]
	if !ok {
		return Value{}, ErrAwaitOnMissing
	}
	if slot.state == AsyncPending {
		return Value{}, ErrAwaitOnPending
	}
	v := slot.value
	delete(a.slots, token)
	return v, nil
}

// Pending reports how many tokens remain unconsumed, used by diagnostics
// and tests that want to assert no dangling Pending tokens survive a run.
func (a *AsyncTable) Pending() int {
	n := 0
	for _, s := range a.slots {
		if s.state == AsyncPending {
			n++
		}
	}
	return n
}

// evalAsyncComplete implements AsyncComplete(token, value) (§4.3.2).
func (e *Executor) evalAsyncComplete(n der.Node, token, value Value) (Value, error) {
	if err := requireKind(n, token, KindAsyncToken); err != nil {
		return Value{}, err
	}
	if err := e.async.Complete(token.Token, value); err != nil {
		return Value{}, execErr(err, n.ResultID, n.Opcode, "token #%d", token.Token)
	}
	return Nil(), nil
}

// evalAsyncAwait implements AsyncAwait(token) (§4.3.2): Ready returns and
// consumes the token; Pending is AwaitOnPending — single-threaded, nothing
// else can resolve it mid-execute().
func (e *Executor) evalAsyncAwait(n der.Node, token Value) (Value, error) {
	if err := requireKind(n, token, KindAsyncToken); err != nil {
		return Value{}, err
	}
	v, err := e.async.Await(token.Token)
	if err != nil {
		return Value{}, execErr(err, n.ResultID, n.Opcode, "token #%d", token.Token)
	}
	return v, nil
}
