package main

import (
	"context"
	"log"

	"rd-assistant/internal/bootstrap"
	"rd-assistant/internal/config"
	"rd-assistant/internal/server"
	"rd-assistant/internal/tracer"
	"rd-assistant/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Archive Database (optional)
	var gormDB *gorm.DB
	if cfg.Archive.DSN != "" {
		var err error
		gormDB, err = database.NewGormDBFromDSN(cfg.Archive.DSN)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Autosave Consumer...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
