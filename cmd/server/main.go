package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kira8ke/GloHub/internal/config"
)

func main() {
	// .env must be in the environment before newCmd copies it into the flags.
	if err := config.LoadDotEnv(".env"); err != nil {
		cobra.CheckErr(fmt.Errorf("load .env: %w", err))
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cobra.CheckErr(newCmd().ExecuteContext(ctx))
}
