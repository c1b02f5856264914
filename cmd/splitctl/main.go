package main

import (
	"os"

	"github.com/mmynk/splitledger/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
