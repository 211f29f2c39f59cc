package main

import (
	"fmt"
	"os"

	"github.com/isometry/terraform-provider-adops/cmd/adopsctl/commands"
)

// Build-time variables injected via ldflags
var (
	version = "dev"
	commit  = "none"
)

func main() {
	commands.Version = version
	commands.Commit = commit

	if err := commands.Execute(); err != nil {
		if !commands.Reported(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
