package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "flowdag",
	Short: "Execute a declarative task graph with dependency-aware skipping and failure propagation.",
}

func init() {
	rootCmd.AddCommand(runCmd, workerCmd)

	runCmd.Flags().IntP("jobs", "n", 1, "number of tasks to run concurrently (1 = serial)")
	runCmd.Flags().Bool("dry-run", false, "print what would run without executing anything")
	runCmd.Flags().BoolP("verbose", "v", false, "log every task transition, not just failures")
	runCmd.Flags().Bool("quit-early", false, "cancel remaining dispatch as soon as one task fails")
	runCmd.Flags().String("metrics-addr", "", "address to serve Prometheus metrics on (disabled if empty)")
	runCmd.Flags().String("skipdb", ".flowdag.db", "path to the dependency-fingerprint database")

	for _, name := range []string{"jobs", "dry-run", "verbose", "quit-early", "metrics-addr", "skipdb"} {
		if err := viper.BindPFlag(name, runCmd.Flags().Lookup(name)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("flowdag")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
