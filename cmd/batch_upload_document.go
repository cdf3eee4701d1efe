/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tieubaoca/docproc-be/config"
	"github.com/tieubaoca/docproc-be/database"
)

// batchUploadDocumentCmd represents the batchUploadDocument command
var batchUploadDocumentCmd = &cobra.Command{
	Use:   "batch-upload-document",
	Short: "Process and index every PDF in a directory",
	Run: func(cmd *cobra.Command, args []string) {
		directory, _ := cmd.Flags().GetString("directory")
		tags, _ := cmd.Flags().GetStringArray("tags")
		source, _ := cmd.Flags().GetString("source")
		reinit, _ := cmd.Flags().GetBool("reinit")

		if directory == "" {
			log.Fatal("--directory is required")
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

		files, err := os.ReadDir(directory)
		if err != nil {
			log.Fatalf("Failed to read directory: %v", err)
		}
		for _, file := range files {
			if file.IsDir() || !strings.EqualFold(filepath.Ext(file.Name()), ".pdf") {
				continue
			}
			filePath := filepath.Join(directory, file.Name())
			if err := uploadFromPath(fileService, filePath, source, tags); err != nil {
				log.Printf("Failed to upload document %s: %v", filePath, err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(batchUploadDocumentCmd)

	batchUploadDocumentCmd.Flags().String("directory", "", "Path to the dir to upload")
	batchUploadDocumentCmd.Flags().StringArrayP("tags", "g", []string{}, "Tags for the documents")
	batchUploadDocumentCmd.Flags().String("source", "", "Source label stored with the chunks")
	batchUploadDocumentCmd.Flags().BoolP("reinit", "r", false, "Reinitialize the vector store schema")
}
