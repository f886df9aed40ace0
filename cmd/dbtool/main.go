package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"route-assignment-service/internal/cli"
	"route-assignment-service/internal/config"
	"route-assignment-service/internal/platform/obs"
)

func main() {
	_ = godotenv.Load()
	if _, err := obs.Init(config.Get("LOG_LEVEL", "warn")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:          "dbtool",
		Short:        "Manage the assignment and affinity history database",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.SeedAffinityCmd())
	rootCmd.AddCommand(cli.PruneAffinityCmd(time.Now))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
