// Package ui handles colored terminal output for the CLI.
package ui

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

// quiet suppresses all terminal output when set
var quiet bool

// colors are disabled when stdout is not a terminal
var colored = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

// Color functions for terminal output
var (
	Cyan   = colorize("\033[36m%s\033[0m")
	Yellow = colorize("\033[33m%s\033[0m")
	Red    = colorize("\033[31m%s\033[0m")
	Green  = colorize("\033[32m%s\033[0m")
	Dim    = colorize("\033[2m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		if !colored {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

// SetQuiet disables all terminal output
func SetQuiet(q bool) {
	quiet = q
}

// SetColor forces colored output on or off, overriding terminal detection
func SetColor(enabled bool) {
	colored = enabled
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if quiet {
		return
	}
	if len(args) > 0 {
		fmt.Println(Red(msg + ": " + fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Println(Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	if quiet {
		return
	}
	fmt.Println(Green("✓ " + msg))
}

// PrintInfo prints a labeled value in cyan
func PrintInfo(label string, value string) {
	if quiet {
		return
	}
	fmt.Printf("%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if quiet {
		return
	}
	if len(args) > 0 {
		fmt.Println(Yellow(msg + ": " + fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Println(Yellow(msg))
	}
}

// PrintProgress prints a transient progress line, overwriting the previous
// one.
func PrintProgress(msg string) {
	if quiet {
		return
	}
	fmt.Printf("\r\033[K%s", Dim(msg))
}

// EndProgress terminates a progress line with a newline
func EndProgress() {
	if quiet {
		return
	}
	fmt.Println()
}
