package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/cleared-dev/arrears/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := commands.NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(commands.ExitCode(err))
	}
}
