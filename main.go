package main

import (
	"github.com/shortyhq/shorty/cmd"

	// Blank imports trigger the init() functions that register each
	// subcommand on the root command.
	_ "github.com/shortyhq/shorty/cmd/cli"
	_ "github.com/shortyhq/shorty/cmd/server"
)

func main() {
	cmd.Execute()
}
