// Package main is the entry point for the hydromas simulation CLI.
package main

import (
	"fmt"
	"os"

	"hydromas/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
