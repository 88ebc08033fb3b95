// Package main is the entry point for the encounter server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "encounter-api",
	Short: "Turn-based combat resolution server",
	Long: `encounter-api resolves turn-based tabletop combat: initiative, turns,
attacks, saving throws, zone movement, and reaction windows, with a websocket
gateway that keeps renderer tokens in sync.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(simulateCmd)
}
