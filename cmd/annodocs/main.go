package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"annodocs/internal/publish"
	"annodocs/internal/watch"
)

// Exit codes beyond 1 let wrapper scripts tell a broken setup from a busy
// one.
const (
	exitFailure      = 1
	exitChecksFailed = 2
	exitLocked       = 3
)

func main() {
	os.Exit(run(newRootCommand().Execute(), os.Stderr))
}

func run(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	if !errors.Is(err, context.Canceled) {
		fmt.Fprintf(stderr, "annodocs: %v\n", err)
	}
	return exitCode(err)
}

func exitCode(err error) int {
	var checks *checksFailedError
	switch {
	case errors.As(err, &checks):
		return exitChecksFailed
	case errors.Is(err, watch.ErrAlreadyRunning), errors.Is(err, publish.ErrLocked):
		return exitLocked
	default:
		return exitFailure
	}
}
