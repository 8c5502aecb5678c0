package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SaiNageswarS/go-api-boot/config"
	"github.com/SaiNageswarS/go-api-boot/dotenv"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-api-boot/odm"
	"github.com/ollama/ollama/api"
	"go.uber.org/zap"

	"github.com/vytalcare/health-navigator/appconfig"
	"github.com/vytalcare/health-navigator/llm"
	"github.com/vytalcare/health-navigator/memory"
	"github.com/vytalcare/health-navigator/navigator"
	"github.com/vytalcare/health-navigator/rag"
	"github.com/vytalcare/health-navigator/services"
)

func main() {
	dotenv.LoadEnv()

	cfg := &appconfig.AppConfig{}
	err := config.LoadConfig("config.ini", cfg)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx := getCancellableContext()

	geminiClient := llm.NewGeminiClient(cfg.GeminiModel)

	ollamaClient, err := api.ClientFromEnvironment()
	if err != nil {
		logger.Fatal("Failed to create Ollama client", zap.Error(err))
	}

	// Mongo is optional: without it threads are per-request only.
	var threads odm.OdmCollectionInterface[memory.ChatThread]
	if cfg.MongoURI != "" {
		mongoClient := odm.ProvideMongoClient()
		threads = odm.CollectionOf[memory.ChatThread](mongoClient, cfg.Database)
	} else {
		logger.Info("MONGO-URI not set, running without chat persistence")
	}

	embedder := rag.NewOllamaEmbedder(ollamaClient)
	store := rag.NewVectorStore()

	if cfg.KnowledgeDir != "" {
		ingestor := rag.NewIngestor(embedder, store)
		if err := ingestor.IngestDir(ctx, cfg.KnowledgeDir); err != nil {
			logger.Error("Knowledge ingestion failed, continuing without corpus", zap.Error(err))
		}
	}

	retriever := rag.NewRetriever(embedder, store)

	flow := navigator.NewChatFlow(navigator.FlowConfig{
		Client:            geminiClient,
		RetrieveContext:   retriever.Retrieve,
		EnableToolSummary: true,
	})

	history := memory.NewHistoryManager(threads, cfg.MaxTurns)

	mux := http.NewServeMux()
	services.ProvideChatService(flow, history).Register(mux)

	srv := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Health navigator listening", zap.String("addr", cfg.HTTPPort))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func getCancellableContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		cancel()
	}()

	return ctx
}
