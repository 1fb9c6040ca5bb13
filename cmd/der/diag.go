package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// stdout wraps os.Stdout so ANSI codes survive on Windows consoles and are
// stripped automatically when output isn't a terminal, the same pairing
// the teacher's app module declares (fatih/color + go-colorable +
// go-isatty) without ever exercising.
var stdout = colorable.NewColorableStdout()

var (
	colorOpcode = color.New(color.FgCyan)
	colorEntry  = color.New(color.FgGreen, color.Bold)
	colorErr    = color.New(color.FgRed, color.Bold)
	colorDim    = color.New(color.FgHiBlack)
)

func init() {
	// fatih/color auto-detects NO_COLOR/pipe redirection on its own, but the
	// teacher's triple exists specifically to make that detection correct
	// under Windows' ConHost, so check it explicitly the way go-isatty means
	// to be used.
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}

func fail(err error) {
	colorErr.Fprintf(os.Stderr, "der: error: ")
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
