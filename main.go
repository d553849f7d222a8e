package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/ikolcov/learnit/cmd/serve"
	"github.com/ikolcov/learnit/cmd/token"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "learnit",
		Short:        "Learning bookmarks API",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(serve.NewServeCommand())
	rootCmd.AddCommand(token.NewTokenCommand())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
