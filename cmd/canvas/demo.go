package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oliver-os/canvas/internal/presentation/tui"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Render the scene once in the terminal",
	Long: `Loads the registry and assets, optionally activates an object, waits for
its cascade to settle, and paints the resulting snapshot as an ASCII grid.`,
	Run: func(cmd *cobra.Command, args []string) {
		eng, _, logger, err := newEngine(cmd)
		if err != nil {
			fmt.Printf("Error initializing canvas: %v\n", err)
			os.Exit(1)
		}
		defer eng.Close()

		ctx := context.Background()
		if err := eng.LoadRegistry(ctx); err != nil {
			fmt.Printf("Error loading registry: %v\n", err)
			os.Exit(1)
		}
		if failed, err := eng.LoadAssets(ctx); err != nil {
			fmt.Printf("Error loading assets: %v\n", err)
			os.Exit(1)
		} else if failed > 0 {
			logger.Warn("some assets failed to load", "failed", failed)
		}

		if activate, _ := cmd.Flags().GetString("activate"); activate != "" {
			if err := eng.Activate(activate); err != nil {
				fmt.Printf("Error activating %s: %v\n", activate, err)
				os.Exit(1)
			}
			// Give the cascade timers time to ripple through.
			settle, _ := cmd.Flags().GetDuration("settle")
			time.Sleep(settle)
		}

		cols, rows := 80, 24
		interactive := term.IsTerminal(int(os.Stdout.Fd()))
		if interactive {
			if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
				// Leave room for the frame and the status line.
				cols, rows = w-2, h-4
			}
			tui.PrintBanner()
		}

		fmt.Print(tui.New(cols, rows).Render(eng.Snapshot()))
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().String("activate", "", "Object ID to activate before rendering")
	demoCmd.Flags().Duration("settle", 500*time.Millisecond, "How long to wait for cascades to settle")
}
