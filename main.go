package main

import (
	"toolnav/cmd"
	_ "toolnav/cmd/cli"    // register the cli subcommands
	_ "toolnav/cmd/server" // register the server subcommand
)

func main() {
	cmd.Execute()
}
