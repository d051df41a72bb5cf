package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for the demo command.
func PrintBanner() {
	p := termenv.ColorProfile()
	s1 := termenv.String("   ___ __ _ _ ____   ____ _ ___ ").Foreground(p.Color("#818cf8"))
	s2 := termenv.String("  / __/ _` | '_ \\ \\ / / _` / __|").Foreground(p.Color("#a78bfa"))
	s3 := termenv.String(" | (_| (_| | | | \\ V / (_| \\__ \\").Foreground(p.Color("#c084fc"))
	s4 := termenv.String("  \\___\\__,_|_| |_|\\_/ \\__,_|___/").Foreground(p.Color("#e879f9"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println()
}
