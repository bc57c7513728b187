package main

import (
	"fmt"
	"io"
)

// ANSI color constants for update output (no lipgloss, runs outside the TUI).
const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiItalic = "\033[3m"
	ansiViolet = "\033[38;2;167;139;250m" // #a78bfa
	ansiIndigo = "\033[38;2;129;140;248m" // #818cf8
	ansiGreen  = "\033[38;2;74;222;128m"  // #4ade80
	ansiSlate  = "\033[38;2;136;144;160m" // #8890a0
)

// printUpdateLogo prints the spaced SYNEX wordmark in alternating violet.
func printUpdateLogo(out io.Writer) {
	letters := "SYNEX"
	colors := [2]string{ansiViolet, ansiIndigo}
	fmt.Fprint(out, "\n  ")
	for i, ch := range letters {
		fmt.Fprintf(out, "%s%s%c%s", colors[i%2], ansiBold, ch, ansiReset)
		if i < len(letters)-1 {
			fmt.Fprint(out, "  ")
		}
	}
	fmt.Fprintln(out)
}

func printUpdateSuccess(out io.Writer, oldVersion, newVersion string) {
	printUpdateLogo(out)
	fmt.Fprintf(out, "\n  %s%s%s  %s%s→%s  %s%s%s%s\n",
		ansiSlate, oldVersion, ansiReset,
		ansiViolet, ansiBold, ansiReset,
		ansiGreen, ansiBold, newVersion, ansiReset,
	)
	fmt.Fprintf(out, "\n  %s%supdated%s\n\n", ansiSlate, ansiItalic, ansiReset)
}

func printAlreadyCurrent(out io.Writer, currentVersion string) {
	printUpdateLogo(out)
	fmt.Fprintf(out, "\n  %s%s%s%s  %s%salready the latest release%s\n\n",
		ansiViolet, ansiBold, currentVersion, ansiReset,
		ansiSlate, ansiItalic, ansiReset,
	)
}
