package main

import (
	"context"
	"log"
	"os"

	"github.com/infosharesystems/vres-client/internal/client/app"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	defer func() { _ = application.Close() }()

	if err := application.Run(context.Background(), os.Args[1:]); err != nil {
		log.Fatalf("vres: %v", err)
	}
}
