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
		Use:   "routectl",
		Short: "Assign delivery vehicles to routes from depot planning files",
		Long: `routectl ingests the route plan, fleet list, driver assignments and load
manifests of a delivery cycle and assigns a vehicle to every route.`,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(cli.RunCmd(time.Now))
	rootCmd.AddCommand(cli.AffinityCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
