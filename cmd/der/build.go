package main

import (
	"fmt"
	"os"

	"github.com/zxdxjtu/der/internal/asm"
	"github.com/zxdxjtu/der/internal/container"
)

func runBuild(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: der build <in.dasm> <out.der>")
	}
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	program, err := asm.Assemble(string(src))
	if err != nil {
		return err
	}
	encoded, err := container.Encode(program)
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[1], encoded, 0644); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s (%d bytes, %d nodes, entry %d)\n",
		args[1], len(encoded), len(program.Nodes), program.Metadata.EntryResultID)
	return nil
}
