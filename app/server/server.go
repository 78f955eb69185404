package server

import (
	"context"
	"log"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"ragchat/app/agent"
	"ragchat/app/api"
	"ragchat/app/chat"
	"ragchat/config"
	"ragchat/extract"
	"ragchat/index"
	"ragchat/model"
	"ragchat/store"
)

var fiberConfig = fiber.Config{
	ErrorHandler: api.ErrorHandler,
}

type Server struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewServer(cfg *config.Config) *Server {
	return &Server{
		cfg:    cfg,
		logger: slog.Default(),
	}
}

func (s *Server) Stop() {
	s.logger.Info("server stopped")
}

func (s *Server) Run() {
	ctx := context.Background()

	historyStore, err := store.Open(ctx, s.cfg.DatabaseURL)
	if err != nil {
		log.Fatal("error to connect to history store: ", err)
	}
	if err := historyStore.Init(ctx); err != nil {
		log.Fatal("error to create tables: ", err)
	}

	embedder, err := model.NewClient(s.cfg.OpenAI)
	if err != nil {
		log.Fatal("error to create embedding client: ", err)
	}
	engine, err := agent.NewEngine(s.cfg.OpenAI)
	if err != nil {
		log.Fatal("error to create completion engine: ", err)
	}

	var (
		retriever    = index.NewRetriever(embedder, s.cfg.IndexPath)
		orchestrator = chat.NewOrchestrator(retriever, engine, extract.Entities, historyStore)

		app            = fiber.New(fiberConfig)
		checkHandler   = api.NewCheckHandler()
		chatHandler    = api.NewChatHandler(orchestrator)
		historyHandler = api.NewHistoryHandler(historyStore)
		check          = app.Group("/check")
	)

	app.Use(cors.New())

	check.Get("/healthy", checkHandler.HandleHealthy)
	app.Post("/chat", chatHandler.HandleChat)
	app.Post("/chat_stream", chatHandler.HandleChatStream)
	app.Get("/history", historyHandler.HandleHistory)

	if err := app.Listen(s.cfg.ListenAddr); err != nil {
		s.logger.Error("error to start server", "error", err.Error())
	}
}
