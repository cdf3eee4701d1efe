/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/tieubaoca/docproc-be/config"
	"github.com/tieubaoca/docproc-be/database"
	"github.com/tieubaoca/docproc-be/service"
	"github.com/tieubaoca/docproc-be/types"
	"github.com/tieubaoca/docproc-be/utils"
)

// uploadDocumentCmd represents the uploadDocument command
var uploadDocumentCmd = &cobra.Command{
	Use:   "upload-document",
	Short: "Process a document and index its chunks into the vector store",
	Run: func(cmd *cobra.Command, args []string) {
		filePath, _ := cmd.Flags().GetString("file")
		tags, _ := cmd.Flags().GetStringArray("tags")
		source, _ := cmd.Flags().GetString("source")
		reinit, _ := cmd.Flags().GetBool("reinit")

		if filePath == "" {
			log.Fatal("--file is required")
		}

		cfg, err := config.LoadConfig(configPath())
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		fileService, store := buildFileService(cfg)
		if reinit {
			weaviateDb, ok := store.(*database.WeaviateStore)
			if !ok {
				log.Fatal("--reinit is only supported for the weaviate driver")
			}
			if err := weaviateDb.ReInit(); err != nil {
				log.Fatalf("Failed to reinitialize vector store: %v", err)
			}
		}

		if err := uploadFromPath(fileService, filePath, source, tags); err != nil {
			log.Fatalf("Failed to upload document %s: %v", filePath, err)
		}
	},
}

func init() {
	rootCmd.AddCommand(uploadDocumentCmd)

	uploadDocumentCmd.Flags().StringP("file", "f", "", "Path to the file to upload")
	uploadDocumentCmd.Flags().StringArrayP("tags", "g", []string{}, "Tags for the document")
	uploadDocumentCmd.Flags().String("source", "", "Source label stored with the chunks")
	uploadDocumentCmd.Flags().BoolP("reinit", "r", false, "Reinitialize the vector store schema")
}

func buildFileService(cfg *config.Config) (*service.FileService, database.VectorStore) {
	processor, err := service.NewProcessor(cfg.Backend, processorConfig(cfg))
	if err != nil {
		log.Fatalf("Failed to create backend %s: %v", cfg.Backend, err)
	}

	embedder := buildEmbedder(cfg)
	store, err := buildVectorStore(cfg, embedder)
	if err != nil {
		log.Fatalf("Failed to initialize vector store: %v", err)
	}

	return service.NewFileService(cfg.UploadDir, processor, embedder, store, nil), store
}

func uploadFromPath(fileService *service.FileService, filePath, source string, tags []string) error {
	req := types.UploadRequest{
		Title:  utils.FileNameWithoutExt(filePath),
		Source: source,
		Tags:   tags,
	}

	statusChan := make(chan types.ProcessingDocumentStatus)
	errChan := make(chan error, 1)
	go func() {
		errChan <- fileService.IngestFile(context.Background(), filePath, req, statusChan)
	}()
	for status := range statusChan {
		fmt.Printf("[%s] %s\n", status.Status, status.Message)
	}
	return <-errChan
}
