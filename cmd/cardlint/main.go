package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nrdb/cardlint/pkg/cli"
	"github.com/nrdb/cardlint/pkg/console"
	"github.com/nrdb/cardlint/pkg/validator"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := cli.NewRootCommand(version)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, validator.ErrValidationFailed):
		// The summary line has already been printed.
		return 1
	default:
		fmt.Fprintln(stderr, console.FormatErrorMessage(err.Error()))
		return 1
	}
}
