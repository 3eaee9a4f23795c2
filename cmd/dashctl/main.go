package main

import (
	"fmt"
	"os"

	"github.com/benvon/problem-dashboard/cmd/dashctl/commands"
)

func main() {
	if err := commands.NewRootCmd(commands.OpenFromConfig).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
