// Package visitor provides a read-only topological traversal over a loaded
// der.Program, for visualization and verification consumers (§6.2, §9's
// design note: "both MUST NOT mutate the program or depend on executor
// state").
package visitor

import "github.com/zxdxjtu/der/internal/der"

// Visit is called once per node reachable from the walk's root, in
// topological order (every argument node visited before the node that
// references it), together with the already-resolved der.Node values for
// its live arguments.
type Visit func(node der.Node, resolvedArgs []der.Node)

// Walk traverses every node reachable from root — typically the program's
// entry point — visiting each exactly once, in topological order. It never
// mutates program.
func Walk(program *der.Program, root uint32, visit Visit) {
	visited := make(map[uint32]bool)
	walkFrom(program, root, visited, visit)
}

// WalkEntry walks from program's declared entry point.
func WalkEntry(program *der.Program, visit Visit) {
	Walk(program, program.Metadata.EntryResultID, visit)
}

// WalkAll visits every node in the program in declaration order, regardless
// of reachability from the entry point — used by the disassembler's --all
// mode to render dead or auxiliary nodes a pure entry-point walk would skip.
func WalkAll(program *der.Program, visit Visit) {
	visited := make(map[uint32]bool)
	for _, n := range program.Nodes {
		walkFrom(program, n.ResultID, visited, visit)
	}
}

func walkFrom(program *der.Program, id uint32, visited map[uint32]bool, visit Visit) {
	if id == der.NoResult || visited[id] {
		return
	}
	n, ok := program.NodeByResultID(id)
	if !ok {
		return
	}
	visited[id] = true

	resolved := make([]der.Node, 0, n.ArgCount)
	for i := 0; i < int(n.ArgCount); i++ {
		if !isNodeRefArg(n.Opcode, i) {
			continue
		}
		argID := n.Arg(i)
		walkFrom(program, argID, visited, visit)
		if argNode, ok := program.NodeByResultID(argID); ok {
			resolved = append(resolved, argNode)
		}
	}
	visit(n, resolved)
}

// isNodeRefArg reports whether argument i of op is a node reference,
// mirroring internal/der's own refArgIndices rule (kept duplicated here
// rather than exported from internal/der, since the visitor is meant to
// depend only on der's public Program/Node surface, not its validation
// internals).
func isNodeRefArg(op der.OpCode, i int) bool {
	switch op {
	case der.OpConstInt, der.OpConstFloat, der.OpConstString, der.OpConstBool, der.OpAlloc, der.OpLoadArg:
		return false
	default:
		return true
	}
}
