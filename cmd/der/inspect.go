package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/zxdxjtu/der/internal/container"
)

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: der inspect <prog.der>")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	program, err := container.Decode(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "version:      %d.%d\n", program.Metadata.Version.Major, program.Metadata.Version.Minor)
	fmt.Fprintf(stdout, "entry:        %s\n", colorEntry.Sprint(program.Metadata.EntryResultID))
	fmt.Fprintf(stdout, "capabilities: %s\n", program.Metadata.Capabilities)
	fmt.Fprintf(stdout, "nodes:        %d\n", len(program.Nodes))
	fmt.Fprintf(stdout, "constants:    %d\n", program.Constants.Len())
	fmt.Fprintf(stdout, "proof bytes:  %d\n", len(program.Proof))
	if len(program.UnknownChunks) > 0 {
		fmt.Fprintf(stdout, "unknown chunks:\n")
		for _, c := range program.UnknownChunks {
			fmt.Fprintf(stdout, "  %s (%d bytes)\n", c.Tag, len(c.Payload))
		}
	}

	if len(program.Metadata.Traits) > 0 {
		fmt.Fprintln(stdout, "traits:")
		for _, t := range program.Metadata.Traits {
			fmt.Fprintf(stdout, "  %s  pre=%v post=%v\n", t.Name, t.Preconditions, t.Postconditions)
		}
	}

	if program.Constants.Len() > 0 {
		fmt.Fprintln(stdout, "constant pool:")
		for i, c := range program.Constants.All() {
			fmt.Fprintf(stdout, "  [%d] %s %s\n", i, c.Kind, colorDim.Sprint(c))
		}
	}
	return nil
}
