package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/hugmood/internal/authctl/cli"
	"github.com/dmitrijs2005/hugmood/internal/authctl/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	app := cli.NewApp(cfg)
	os.Exit(app.Run(ctx, config.Positional(os.Args[1:])))
}
