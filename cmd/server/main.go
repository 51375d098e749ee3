package main

import (
	"log"

	"invoice-ledger-backend/internal/cli"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}

	cli.Execute()
}
