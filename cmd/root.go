// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hydromas",
	Short: "Hydromas - a cyber-physical water network simulation framework",
	Long: `Hydromas simulates water distribution networks as a closed loop of
physical components (reservoirs, canals, gates, pumps, pipes, turbines),
perception/control/dispatch agents observing and actuating them over a
synchronous message bus, and a harness driving the two-phase tick loop.

Scenarios are declarative: four YAML documents per scenario directory
(config, components, topology, agents) describe a network and its
agents. "hydromas run" loads and executes one; "hydromas validate"
checks one without running it.`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"runtime config file path (log level, metrics address, scenario defaults)")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

// exitWithError prints error message and exits with code 1
func exitWithError(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}
