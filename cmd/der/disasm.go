package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/zxdxjtu/der/internal/container"
	"github.com/zxdxjtu/der/internal/der"
	"github.com/zxdxjtu/der/internal/visitor"
)

func runDisasm(args []string) error {
	fs := flag.NewFlagSet("disasm", flag.ContinueOnError)
	topo := fs.Bool("topo", false, "walk in topological order from the entry point instead of declaration order")
	all := fs.Bool("all", false, "include nodes unreachable from the entry point")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: der disasm <prog.der> [--topo] [--all]")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	program, err := container.Decode(data)
	if err != nil {
		return err
	}

	print := func(n der.Node, resolvedArgs []der.Node) {
		printNode(program, n)
	}

	switch {
	case *topo:
		visitor.WalkEntry(program, print)
	case *all:
		visitor.WalkAll(program, print)
	default:
		for _, n := range program.Nodes {
			printNode(program, n)
		}
	}
	return nil
}

func printNode(program *der.Program, n der.Node) {
	marker := "  "
	if n.ResultID == program.Metadata.EntryResultID {
		marker = colorEntry.Sprint("=>")
	}
	fmt.Fprintf(stdout, "%s %4d: %s", marker, n.ResultID, colorOpcode.Sprint(n.Opcode))
	fmt.Fprint(stdout, "(")
	for i := 0; i < int(n.ArgCount); i++ {
		if i > 0 {
			fmt.Fprint(stdout, ", ")
		}
		fmt.Fprint(stdout, formatArg(program, n, i))
	}
	fmt.Fprintln(stdout, ")")
}

func formatArg(program *der.Program, n der.Node, i int) string {
	v := n.Arg(i)
	switch n.Opcode {
	case der.OpConstInt, der.OpConstFloat, der.OpConstString, der.OpConstBool:
		if c, err := program.Constants.Get(int(v)); err == nil {
			return colorDim.Sprintf("%s", c)
		}
	case der.OpAlloc, der.OpLoadArg:
		return fmt.Sprintf("#%d", v)
	}
	return fmt.Sprintf("n%d", v)
}
