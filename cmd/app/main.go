package main

import (
	"os"

	"MarketPulse/cmd/app/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
