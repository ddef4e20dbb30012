// Package cli defines the docugraph command line interface.
package cli

import (
	"DocuGraph/internal/app"
	"DocuGraph/internal/config"
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "docugraph",
	Short: "Multimodal document ingestion into a knowledge graph",
	Long: `DocuGraph parses documents, describes their images, tables and equations
with multimodal models, and merges the extracted entities and relationships
into a knowledge graph backed by Neo4j, Milvus and MongoDB.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "path to the configuration file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// buildApp loads configuration, applies any overrides and wires the
// application.
func buildApp(ctx context.Context, overrides ...func(*config.AppConfig)) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	for _, override := range overrides {
		override(cfg)
	}
	return app.Build(ctx, cfg)
}
