package main

import (
	"github.com/joho/godotenv"

	"jukebot/internal/jukectl"
)

func main() {
	_ = godotenv.Load()
	jukectl.Execute()
}
