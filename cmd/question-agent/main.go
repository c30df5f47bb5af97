package main

import (
	"fmt"
	"os"

	"github.com/spherical/question-agent/cmd/question-agent/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
