package main

import (
	"fmt"
	"os"

	"e2e_automation/presentation/terminal"
)

func main() {
	if err := terminal.NewTerminalInterface().Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
