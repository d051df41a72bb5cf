package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oliver-os/canvas/internal/presentation/graph"
	"github.com/oliver-os/canvas/pkg/adapters/file"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the parsed object registry",
	Long:  `Parses the YAML registry and prints the object descriptors and presets it declares, without starting an engine.`,
	Run: func(cmd *cobra.Command, args []string) {
		registryPath, _ := cmd.Flags().GetString("registry")
		asJSON, _ := cmd.Flags().GetBool("json")
		asMermaid, _ := cmd.Flags().GetBool("mermaid")

		loader, err := file.NewLoader(registryPath)
		if err != nil {
			fmt.Printf("Error opening registry: %v\n", err)
			os.Exit(1)
		}

		ctx := context.Background()
		objects, err := loader.LoadObjects(ctx)
		if err != nil {
			fmt.Printf("Error loading objects: %v\n", err)
			os.Exit(1)
		}
		presets, err := loader.ListPresets(ctx)
		if err != nil {
			fmt.Printf("Error listing presets: %v\n", err)
			os.Exit(1)
		}

		if asMermaid {
			fmt.Print(graph.GenerateMermaid(objects, nil))
			return
		}

		if asJSON {
			payload, err := json.MarshalIndent(map[string]any{
				"objects": objects,
				"presets": presets,
			}, "", "  ")
			if err != nil {
				fmt.Printf("Error encoding registry: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(payload))
			return
		}

		fmt.Printf("%-16s %3s %-28s %-12s %s\n", "ID", "Z", "POSITION", "FLAGS", "CASCADE")
		for _, obj := range objects {
			flags := ""
			if obj.Interactive {
				flags += "interactive "
			}
			if obj.Visible {
				flags += "visible"
			}
			cascade := "-"
			if obj.Cascade != nil {
				cascade = fmt.Sprintf("%v @ %dms", obj.Cascade.Affects, obj.Cascade.DelayMillis)
			}
			pos := fmt.Sprintf("(%g,%g %gx%g)",
				obj.Position.X, obj.Position.Y, obj.Position.Width, obj.Position.Height)
			fmt.Printf("%-16s %3d %-28s %-12s %s\n", obj.ID, obj.ZIndex, pos, flags, cascade)
		}
		if len(presets) > 0 {
			fmt.Printf("\nPresets: %v\n", presets)
		}
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("json", false, "Output the registry as JSON")
	inspectCmd.Flags().Bool("mermaid", false, "Output the cascade graph as a Mermaid flowchart")
}
