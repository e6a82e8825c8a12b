package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/shopcore/identity/internal/app"
	"github.com/shopcore/identity/internal/config"
)

func main() {

	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.LoadConfig()

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	a.Run(ctx)

}
