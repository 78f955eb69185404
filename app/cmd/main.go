package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ragchat/app/server"
	"ragchat/config"
)

func init() {
	// .env is optional; real environments set the variables directly.
	_ = godotenv.Load()
}

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal("error loading config: ", err)
	}

	s := server.NewServer(cfg)

	go s.Run()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	<-sigch
	log.Println("Received shutdown signal, shutting down server...")
	s.Stop()
}
