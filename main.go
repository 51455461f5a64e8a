package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/idelchi/diskreport/internal/cli"
)

// version is set at build time.
var version = "unknown"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.New(version).Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)

		stop()
		os.Exit(1)
	}
}
