/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tieubaoca/docproc-be/service"
	"github.com/tieubaoca/docproc-be/types"
)

// processFileCmd represents the processFile command
var processFileCmd = &cobra.Command{
	Use:   "process-file",
	Short: "Process a single document and print the result as JSON",
	Long: `Runs a document through the selected processing backend without
indexing anything. Useful for inspecting extraction and chunking output.`,
	Run: func(cmd *cobra.Command, args []string) {
		filePath, _ := cmd.Flags().GetString("file")
		backend, _ := cmd.Flags().GetString("backend")
		format, _ := cmd.Flags().GetString("format")
		chunkSize, _ := cmd.Flags().GetInt("chunk-size")
		overlap, _ := cmd.Flags().GetInt("overlap")
		noChunk, _ := cmd.Flags().GetBool("no-chunk")

		if filePath == "" {
			log.Fatal("--file is required")
		}
		data, err := os.ReadFile(filePath)
		if err != nil {
			log.Fatalf("Failed to read file: %v", err)
		}

		processor, err := service.NewProcessor(backend, types.ProcessorServiceConfig{
			DefaultChunkSize:    chunkSize,
			DefaultChunkOverlap: overlap,
		})
		if err != nil {
			log.Fatalf("Failed to create backend %s: %v", backend, err)
		}

		req := types.ProcessRequest{
			Data:     data,
			Filename: filepath.Base(filePath),
			Options:  map[string]any{"format": format},
		}
		if !noChunk {
			req.ChunkingStrategy = types.StaticChunkingStrategy(chunkSize, overlap)
		}

		result, err := processor.Process(context.Background(), req)
		if err != nil {
			log.Fatalf("Processing failed: %v", err)
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode result: %v", err)
		}
		fmt.Println(string(out))
	},
}

func init() {
	rootCmd.AddCommand(processFileCmd)

	processFileCmd.Flags().StringP("file", "f", "", "Path to the file to process")
	processFileCmd.Flags().StringP("backend", "b", service.ProcessorLayout, "Processing backend to use")
	processFileCmd.Flags().String("format", service.FormatMarkdown, "Export format (markdown, html, json, text)")
	processFileCmd.Flags().Int("chunk-size", service.DefaultAutoChunkSize, "Chunk window size in tokens")
	processFileCmd.Flags().Int("overlap", service.DefaultAutoChunkOverlap, "Chunk overlap in tokens")
	processFileCmd.Flags().Bool("no-chunk", false, "Skip chunking and return content only")
}
