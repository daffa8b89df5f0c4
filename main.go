package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"uno/server"
)

func main() {
	config, err := server.LoadConfig("config.yml")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	logger, err := server.NewLogger(config)
	if err != nil {
		log.Fatalf("Could not create logger: %v", err)
	}
	defer logger.Sync()

	stats, err := server.NewStats()
	if err != nil {
		logger.Fatalw("Could not create stats", "error", err)
	}
	defer stats.Close()

	sessionHolder := server.NewSessionHolder(stats, logger)
	broadcaster := server.NewBroadcaster(sessionHolder, config.GameConfig.RevealHands, stats, logger)
	matchHolder := server.NewMatchHolder(config.Rules(), broadcaster, stats, logger)
	pipeline := server.NewPipeline(matchHolder, sessionHolder, logger)
	s := server.NewServer(config, sessionHolder, matchHolder, pipeline, stats, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-c
		logger.Infow("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	logger.Infow("Startup was completed", "port", config.Port, "rules", config.Rules())

	if err := s.ListenAndServe(ctx); err != nil {
		logger.Errorw("Server exited with error", "error", err)
	}
}
