package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/phishguard/internal/buildinfo"
	"github.com/dmitrijs2005/phishguard/internal/client/cli"
	"github.com/dmitrijs2005/phishguard/internal/client/config"
	"github.com/dmitrijs2005/phishguard/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	token := os.Getenv("PHISHGUARD_TOKEN")
	if token == "" {
		log.Fatal("PHISHGUARD_TOKEN is not set; log in to the web app and copy your access token")
	}

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	app, err := cli.NewApp(cfg, token, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
