package main

import (
	"log"

	"github.com/shellgate/shellgate/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ shellgate failed to start: %v", err)
	}
}
