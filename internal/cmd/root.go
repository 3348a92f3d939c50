// Package cmd holds the memoask command line.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "memoask",
	Short: "Ask AI from your notes",
	Long: `memoask asks an AI provider questions from a terminal chat or a memo
editor. Questions go to a chat backend (memoask serve) together with the
current AI settings.`,
	SilenceUsage: true,
	RunE:         runChat,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/memoask/config.yaml)")
}
