package main

import (
	"fmt"
	"os"

	"jira-cfd/cmd/jira-cfd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
