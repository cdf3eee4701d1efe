/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/philippgille/chromem-go"
	"github.com/spf13/cobra"

	"github.com/tieubaoca/docproc-be/config"
	"github.com/tieubaoca/docproc-be/database"
	"github.com/tieubaoca/docproc-be/handler"
	"github.com/tieubaoca/docproc-be/middleware"
	"github.com/tieubaoca/docproc-be/repository"
	"github.com/tieubaoca/docproc-be/service"
	"github.com/tieubaoca/docproc-be/types"
)

// startServerCmd represents the startServer command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the document processing server",
	Long:  `Starts the HTTP server that processes, chunks, and indexes documents`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(configPath())
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		processors := buildProcessors(cfg)
		defaultProcessor, ok := processors[cfg.Backend]
		if !ok {
			log.Fatalf("Default backend %q is not available", cfg.Backend)
		}

		embedder := buildEmbedder(cfg)
		store, err := buildVectorStore(cfg, embedder)
		if err != nil {
			log.Fatalf("Failed to initialize vector store: %v", err)
		}

		var history repository.ProcessingRepo
		if cfg.MongoURI != "" {
			mongoClient, err := database.NewMongoClient(context.Background(), cfg.MongoURI)
			if err != nil {
				log.Fatalf("Failed to connect to MongoDB: %v", err)
			}
			mongoDb := mongoClient.Database("docproc")
			history = repository.NewProcessingRepo(mongoDb.Collection("processing_records"))
		}

		fileService := service.NewFileService(cfg.UploadDir, defaultProcessor, embedder, store, history)
		wsService := service.NewWebSocketService(defaultProcessor)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		processHandler := handler.NewProcessHandler(processors, cfg.Backend)
		uploadHandler := handler.NewUploadHandler(fileService)
		searchHandler := handler.NewSearchHandler(store)
		pdfHandler := handler.NewDocumentHandler(cfg.UploadDir)

		// Setup Gin router
		router := gin.Default()

		// Apply global middleware
		router.Use(corsHandler.CorsMiddleware)

		apiV1 := router.Group("/api/v1")
		{
			apiV1.POST("/process", processHandler.HandleProcess)
			apiV1.GET("/backends", processHandler.HandleBackends)
			apiV1.POST("/chunks/search", searchHandler.HandleSearch)
			apiV1.GET("/document", pdfHandler.ServeDocument)
		}

		router.GET("/ws/process", func(c *gin.Context) {
			wsService.HandleProcess(c.Writer, c.Request)
		})

		// Admin routes - require the static API key
		adminRoutes := router.Group("/admin/api/v1")
		adminRoutes.Use(middleware.APIKeyMiddleware(cfg.AdminAPIKey))
		{
			adminRoutes.POST("/upload", uploadHandler.UploadDocumentHandler)
			if history != nil {
				historyHandler := handler.NewHistoryHandler(history)
				adminRoutes.GET("/records", historyHandler.HandleListRecords)
			}
		}

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return "config/config.yaml"
}

func processorConfig(cfg *config.Config) types.ProcessorServiceConfig {
	return types.ProcessorServiceConfig{
		DefaultChunkSize:    cfg.Processor.DefaultChunkSize,
		DefaultChunkOverlap: cfg.Processor.DefaultChunkOverlap,
		MaxFileSizeMB:       cfg.Processor.MaxFileSizeMB,
		OCRLanguages:        cfg.Processor.OCRLanguages,
	}
}

// buildProcessors constructs every registered backend that can run on this
// host. A backend whose external tools are missing is skipped with a warning.
func buildProcessors(cfg *config.Config) map[string]service.FileProcessor {
	svcCfg := processorConfig(cfg)
	processors := make(map[string]service.FileProcessor)
	for _, name := range service.Backends() {
		processor, err := service.NewProcessor(name, svcCfg)
		if err != nil {
			log.Printf("Warning: backend %s unavailable: %v", name, err)
			continue
		}
		processors[name] = processor
	}
	return processors
}

func buildEmbedder(cfg *config.Config) service.Embedder {
	if len(cfg.Gemini.APIKeys) > 0 {
		embedder, err := service.NewGeminiEmbedder(cfg.Gemini.APIKeys, cfg.Gemini.EmbedModel)
		if err != nil {
			log.Fatalf("Failed to create Gemini embedder: %v", err)
		}
		return embedder
	}
	if cfg.OpenAI.APIKey != "" {
		return service.NewOpenAIEmbedder(cfg.OpenAI.Endpoint, cfg.OpenAI.APIKey, cfg.OpenAI.EmbedModel)
	}
	return nil
}

func buildVectorStore(cfg *config.Config, embedder service.Embedder) (database.VectorStore, error) {
	switch cfg.VectorStoreConfig.Driver {
	case "weaviate":
		return database.NewWeaviateStore(cfg.VectorStoreConfig.Weaviate)
	case "chromem":
		var embedFunc chromem.EmbeddingFunc
		if embedder != nil {
			embedFunc = func(ctx context.Context, text string) ([]float32, error) {
				vecs, err := embedder.EmbedTexts(ctx, []string{text})
				if err != nil {
					return nil, err
				}
				if len(vecs) != 1 {
					return nil, fmt.Errorf("expected 1 embedding, got %d", len(vecs))
				}
				return vecs[0], nil
			}
		}
		return database.NewChromemStore(cfg.VectorStoreConfig.ChromemPath, embedFunc)
	default:
		return nil, fmt.Errorf("unknown vector store driver: %s", cfg.VectorStoreConfig.Driver)
	}
}
