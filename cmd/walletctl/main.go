package main

import (
	"os"

	"github.com/betbot/exchangett/cmd/walletctl/commands"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
