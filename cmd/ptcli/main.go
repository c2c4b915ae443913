package main

import (
	"github.com/joho/godotenv"
	"ptcli/internal/app/cli"
)

func main() {
	_ = godotenv.Load()
	cli.Execute()
}
