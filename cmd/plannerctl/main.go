package main

import (
	"fmt"
	"os"

	"github.com/benvon/smart-planner/cmd/plannerctl/commands"
)

func main() {
	if err := commands.NewRootCmd(commands.OpenDatabaseStores).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
