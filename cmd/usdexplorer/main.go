// Command usdexplorer is an interactive terminal browser for binary USD
// crate files: a prim tree on the left, the selected prim's metadata and
// properties on the right.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/cratekit/pkg/usd"
)

const version = "0.1.0"

func main() {
	args := os.Args[1:]
	if len(args) < 1 || args[0] == "--help" || args[0] == "-h" {
		printUsage()
		if len(args) < 1 {
			os.Exit(1)
		}
		return
	}
	if args[0] == "--version" {
		fmt.Printf("usdexplorer %s\n", version)
		return
	}

	path := args[0]
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: crate file not found: %s\n", path)
		os.Exit(1)
	}

	st, warns, err := usd.ReadStageFromFile(path, usd.DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	m := newModel(path, st, warns)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`usdexplorer - interactive USD crate browser

Usage:
  usdexplorer <file.usdc>

Keys:
  up/k, down/j   move selection
  pgup/pgdn      page through the tree
  tab            switch focus between tree and detail panes
  q, ctrl+c      quit`)
}
