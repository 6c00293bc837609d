package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/hugmood/internal/gateway"
	"github.com/dmitrijs2005/hugmood/internal/gateway/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := gateway.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)
}
