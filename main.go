package main

import (
	"context"
	"io"
	"os"

	"github.com/mcncl/jsongraph/internal/cli"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the CLI against the given streams and returns the exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return cli.Main(context.Background(), args, stdin, stdout, stderr)
}
