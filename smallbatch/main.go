// Command smallbatch manages the ledger of a small batch bakery from the terminal.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/belisario-afk/cakepop-ledger/cmd"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

func main() {
	// Environment variables may come from a .env file next to the data.
	_ = godotenv.Load()

	name := path.Base(os.Args[0])
	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	// Exits when invoked by the shell to complete the command line.
	cmd.Completion(commander).Complete(name)

	flag.Parse()
	if sub := flag.Arg(0); sub != "" && !cmd.Registered(commander, sub) {
		if ok, code := cmd.RunExtension(sub, flag.Args()[1:]); ok {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}
