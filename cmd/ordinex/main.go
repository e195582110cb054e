package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ordinex/ordinex/internal/cmd"
	"github.com/ordinex/ordinex/internal/exitcode"
	"github.com/ordinex/ordinex/internal/ux"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			fmt.Fprintln(os.Stderr, "\nOperation cancelled")
			exitcode.Exit(exitcode.Interrupted)
		}

		if !errors.Is(err, exitcode.ErrLargePlan) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", ux.EnhanceError(err))
		}
		exitcode.ExitWithError(err)
	}
	exitcode.Exit(exitcode.Success)
}
