package main

import (
	"os"

	"github.com/spf13/cobra"

	"warden/internal/interfaces/cli/run"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "warden",
		Short: "Warden - a Discord community moderation bot",
		Long:  `Warden watches message traffic and member churn for spam patterns, rate-limits offenders, and keeps moderators informed without flooding them.`,
	}

	rootCmd.AddCommand(
		run.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
