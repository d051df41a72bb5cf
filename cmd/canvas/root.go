package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "canvas",
	Short: "Canvas is a layered-object interaction and positioning engine",
	Long:  `Canvas drives layered 2D scenes: cascading activation, asset loading, and freeform drag positioning, described by a YAML registry.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("registry", "registry.yaml", "Path to the YAML object registry")
	rootCmd.PersistentFlags().String("assets", ".", "Directory containing the scene assets")
}
