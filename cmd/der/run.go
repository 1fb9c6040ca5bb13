package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/zxdxjtu/der/internal/container"
	"github.com/zxdxjtu/der/internal/runtime"
)

func runRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	budget := fs.Uint64("budget", 0, "maximum node evaluations (0 = unlimited)")
	deadline := fs.Duration("deadline", 0, "wall-clock execution deadline (0 = unlimited)")
	workdir := fs.String("workdir", "", "directory FileOpen/FileRead/FileWrite paths resolve against")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: der run <prog.der> [--budget N] [--deadline DUR] [--workdir DIR]")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	program, err := container.Decode(data)
	if err != nil {
		return err
	}

	opts := []runtime.Option{runtime.WithStdout(stdout), runtime.WithStdin(os.Stdin)}
	if *budget != 0 {
		opts = append(opts, runtime.WithNodeBudget(*budget))
	}
	if *deadline != 0 {
		opts = append(opts, runtime.WithDeadline(time.Now().Add(*deadline)))
	}
	if *workdir != "" {
		opts = append(opts, runtime.WithWorkDir(*workdir))
	}

	exec, err := runtime.New(program, opts...)
	if err != nil {
		return err
	}

	result, err := exec.Execute(context.Background())
	if err != nil {
		var execErr *runtime.ExecError
		if errors.As(err, &execErr) {
			colorErr.Fprintln(os.Stderr, "der: runtime error")
			fmt.Fprintln(os.Stderr, execErr)
			os.Exit(1)
		}
		return err
	}

	fmt.Fprintln(stdout, result.String())
	return nil
}
