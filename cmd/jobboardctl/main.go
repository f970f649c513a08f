package main

import (
	"os"

	"go-jobboard-backend/cmd/jobboardctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
