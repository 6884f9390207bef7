package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/dkazakov/fieldsale/internal/buildinfo"
	"github.com/dkazakov/fieldsale/internal/client/cli"
	"github.com/dkazakov/fieldsale/internal/client/config"
	"github.com/dkazakov/fieldsale/internal/logging"
	"github.com/rs/zerolog"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(zerolog.InfoLevel).
		With().Timestamp().Logger()
	logger := logging.NewZerologLogger(zl)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
