package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/rs/cors"

	"review-dashboard/analysis"
	"review-dashboard/api/router"
	"review-dashboard/classifier"
	"review-dashboard/config"
	"review-dashboard/db"
	"review-dashboard/eventbus"
	"review-dashboard/gemini"
	"review-dashboard/internal/logger"
	"review-dashboard/repositories"
	"review-dashboard/services"
	"review-dashboard/summarizer"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is not set")
	}

	if err := db.Init(context.Background()); err != nil {
		log.Fatal(err)
	}

	reviewRepo := repositories.NewReviewRepository(db.Database())
	batchRepo := repositories.NewBatchRepository(db.Database())
	summaryRepo := repositories.NewAnalysisSummaryRepository(db.Database())
	aiLogRepo := repositories.NewAILogRepository(db.Database())

	llm := gemini.New(gemini.Options{
		APIKey:  apiKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
	})

	var bus eventbus.EventBus = eventbus.Noop{}
	if brokers := eventbus.GetBrokers(); brokers != "" {
		kb, err := eventbus.NewKafkaEventBus(brokers)
		if err != nil {
			log.Fatal(err)
		}
		bus = kb
	}
	defer bus.Close()

	pipeline := analysis.NewPipeline(analysis.PipelineConfig{
		Reviews:    reviewRepo,
		Summaries:  summaryRepo,
		Batches:    batchRepo,
		CallLogs:   aiLogRepo,
		Classifier: classifier.New(llm),
		Summarizer: summarizer.New(llm, cfg.Analysis.SummarySampleSize),
		Bus:        bus,
		ChunkSize:  cfg.Analysis.ChunkSize,
		ModelName:  cfg.GeminiModel,
	})
	dispatcher := analysis.NewDispatcher(pipeline, cfg.Analysis.Workers, cfg.Analysis.QueueSize)
	defer dispatcher.Close()

	reviewSvc := services.NewReviewService(reviewRepo, batchRepo, summaryRepo, dispatcher)
	r := router.New(reviewSvc)

	// CORS for the dashboard frontend
	handler := cors.Default().Handler(r)
	if err := http.ListenAndServe(":8080", handler); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
