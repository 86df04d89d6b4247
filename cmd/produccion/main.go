package main

import (
	"os"

	"github.com/lactaria/produccion/backend/cmd/produccion/commands"
)

// main is the entry point for the produccion CLI.
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
