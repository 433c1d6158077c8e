package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/seed-hypermedia/mintter-sub004/internal/bootstrap"
	"github.com/seed-hypermedia/mintter-sub004/internal/config"
	"github.com/seed-hypermedia/mintter-sub004/internal/server"
	"github.com/seed-hypermedia/mintter-sub004/internal/tracer"
	"github.com/seed-hypermedia/mintter-sub004/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Tracing (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer(cfg.Tracing)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.IsProduction())
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(ctx, gormDB, cfg)
	defer container.Close()

	// 5. Start Background Services
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}
	if err := container.StartLiveEvents(ctx, cfg.Codec.LiveEventDurable); err != nil {
		log.Printf("Live Events Error: %v", err)
	}

	// 6. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Shutdown Error: %v", err)
		}
	}()

	// 7. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server Error: %v", err)
	}
}
