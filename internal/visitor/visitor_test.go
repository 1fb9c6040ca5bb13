package visitor

import (
	"testing"

	"github.com/zxdxjtu/der/internal/der"
)

func TestWalkVisitsArgsBeforeNode(t *testing.T) {
	b := der.NewBuilder()
	c1 := b.AddConstant(der.ConstInt(1))
	c2 := b.AddConstant(der.ConstInt(2))
	n1 := b.AddNode(der.OpConstInt, uint32(c1))
	n2 := b.AddNode(der.OpConstInt, uint32(c2))
	sum := b.AddNode(der.OpAdd, n1, n2)
	b.SetEntry(sum)

	p, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var order []uint32
	WalkEntry(p, func(n der.Node, resolvedArgs []der.Node) {
		order = append(order, n.ResultID)
	})

	if len(order) != 3 {
		t.Fatalf("visited %d nodes, want 3", len(order))
	}
	pos := make(map[uint32]int)
	for i, id := range order {
		pos[id] = i
	}
	if pos[n1] >= pos[sum] || pos[n2] >= pos[sum] {
		t.Fatalf("visit order %v did not place args before the node referencing them", order)
	}
}

func TestWalkVisitsEachNodeOnce(t *testing.T) {
	b := der.NewBuilder()
	c := b.AddConstant(der.ConstInt(5))
	shared := b.AddNode(der.OpConstInt, uint32(c))
	left := b.AddNode(der.OpAdd, shared, shared)
	right := b.AddNode(der.OpMul, shared, shared)
	entry := b.AddNode(der.OpAdd, left, right)
	b.SetEntry(entry)

	p, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	counts := make(map[uint32]int)
	WalkEntry(p, func(n der.Node, resolvedArgs []der.Node) {
		counts[n.ResultID]++
	})
	for id, n := range counts {
		if n != 1 {
			t.Errorf("node %d visited %d times, want 1", id, n)
		}
	}
	if len(counts) != 4 {
		t.Fatalf("visited %d distinct nodes, want 4", len(counts))
	}
}

func TestWalkAllIncludesUnreachableNodes(t *testing.T) {
	b := der.NewBuilder()
	c := b.AddConstant(der.ConstInt(1))
	entry := b.AddNode(der.OpConstInt, uint32(c))
	orphan := b.AddNode(der.OpConstInt, uint32(c))
	b.SetEntry(entry)

	p, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var viaEntry, viaAll []uint32
	WalkEntry(p, func(n der.Node, _ []der.Node) { viaEntry = append(viaEntry, n.ResultID) })
	WalkAll(p, func(n der.Node, _ []der.Node) { viaAll = append(viaAll, n.ResultID) })

	if len(viaEntry) != 1 {
		t.Fatalf("WalkEntry visited %d nodes, want 1 (orphan %d unreachable)", len(viaEntry), orphan)
	}
	if len(viaAll) != 2 {
		t.Fatalf("WalkAll visited %d nodes, want 2", len(viaAll))
	}
}

func TestWalkSkipsConstantPoolIndexAsNodeRef(t *testing.T) {
	b := der.NewBuilder()
	c := b.AddConstant(der.ConstInt(1))
	entry := b.AddNode(der.OpConstInt, uint32(c))
	b.SetEntry(entry)

	p, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	WalkEntry(p, func(n der.Node, resolvedArgs []der.Node) {
		if len(resolvedArgs) != 0 {
			t.Fatalf("ConstInt node got %d resolved args, want 0 (arg is a pool index, not a node ref)", len(resolvedArgs))
		}
	})
}
