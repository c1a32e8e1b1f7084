package main

import (
	"os"

	"github.com/pla-ledger/pla/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
