package main

import (
	"fmt"
	"os"

	"github.com/nimasrn/bookkeeper/internal/config"
	"github.com/nimasrn/bookkeeper/pkg/logger"
	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "bookkeeper",
	Short:   "Administrative commands for the bookkeeper backend",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envPath, _ := cmd.Flags().GetString("env")
		if envPath == "" {
			if _, err := os.Stat(".env"); err == nil {
				envPath = ".env"
			}
		}
		return config.Load(envPath)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("env", "", "Path of a .env file to load before reading the environment")
}

func main() {
	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
