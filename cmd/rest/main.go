package main

import (
	"context"
	"log"

	"knowledgebase-engine/internal/bootstrap"
	"knowledgebase-engine/internal/config"
	"knowledgebase-engine/internal/server"
	"knowledgebase-engine/internal/tracer"
	"knowledgebase-engine/pkg/database"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDB(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	ctx := context.Background()

	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(ctx); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	container.TopicService.StartRecomputeLoop(ctx)

	srv := server.New(cfg, container)

	log.Fatal(srv.Run())
}
