package main

import (
	"os"

	"github.com/mono2ledger/mono2ledger/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
