package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"ragchat/config"
	"ragchat/indexer/service"
	"ragchat/model"
)

func init() {
	_ = godotenv.Load()
}

func main() {
	out := flag.String("out", "", "index output path (overrides config)")
	watch := flag.Bool("watch", false, "keep watching the source folder and rebuild on changes")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-out path] [-watch] <source-dir>\n", os.Args[0])
		os.Exit(1)
	}
	srcDir := flag.Arg(0)

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal(err)
	}
	indexPath := cfg.IndexPath
	if *out != "" {
		indexPath = *out
	}

	embedder, err := model.NewClient(cfg.OpenAI)
	if err != nil {
		log.Fatal(err)
	}

	svc := service.New(embedder, srcDir, indexPath)
	if *watch {
		svc.Run()
		return
	}

	n, err := svc.BuildOnce(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("indexed %d documents into %s", n, indexPath)
}
