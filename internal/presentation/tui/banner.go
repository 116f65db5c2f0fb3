package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"                                _       _   ",
	"   ___ _   _  ___ _ __   ___   (_)_ __ | |_ ",
	"  / __| | | |/ _ \\ '_ \\ / _ \\  | | '_ \\| __|",
	" | (__| |_| |  __/ |_) | (_) | | | | | | |_ ",
	"  \\___|\\__,_|\\___| .__/ \\___/  |_|_| |_|\\__|",
	"                 |_|                        ",
}

// Teal to indigo.
var bannerColors = []string{"#2dd4bf", "#22d3ee", "#38bdf8", "#60a5fa", "#818cf8", "#a78bfa"}

// PrintBanner writes the cuepoint banner and version to w. Colors degrade
// to plain text when w is not a terminal.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)

	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, out.String(line).Foreground(out.Color(bannerColors[i%len(bannerColors)])))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, out.String("  v"+v).Faint())
	}
	fmt.Fprintln(w)
}
