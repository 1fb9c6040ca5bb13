// Command der is the CLI front end for the runtime: assembling .dasm
// source into .der files, running them, and inspecting/disassembling
// existing containers.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "build":
		err = runBuild(os.Args[2:])
	case "run":
		err = runRun(os.Args[2:])
	case "disasm":
		err = runDisasm(os.Args[2:])
	case "inspect":
		err = runInspect(os.Args[2:])
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "der: unknown subcommand %q\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		fail(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: der <command> [arguments]

commands:
  build   <in.dasm> <out.der>    assemble textual source into a container
  run     <prog.der> [--budget N] [--deadline DUR] [--workdir DIR]
  disasm  <prog.der> [--topo]    render a container's nodes as text
  inspect <prog.der>             print header/metadata/constant summary`)
}
