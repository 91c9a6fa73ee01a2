package main

import (
	"github.com/joho/godotenv"

	"inmo-backoffice/cmd"
)

func main() {
	// Local development convenience; a missing .env is fine.
	godotenv.Load()

	cmd.Execute()
}
