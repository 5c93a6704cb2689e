package main

import (
	"os"

	"github.com/wltsai/stockpulse/cmd/signal/commands"
)

// main is the entry point for the StockPulse CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
