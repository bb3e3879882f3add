package main

import (
	"os"

	"github.com/conduit-lang/docschema/internal/cli/commands"
)

var (
	// Version information - set at build time with -ldflags
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	commands.Version = Version
	commands.GitCommit = GitCommit
	commands.BuildDate = BuildDate

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
