package cli

import (
	"DocuGraph/internal/config"
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	ingestRecursive bool
	ingestWorkers   int
	ingestTimeout   int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Ingest documents or directories into the knowledge graph",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestRecursive, "recursive", "r", false, "walk directories recursively")
	ingestCmd.Flags().IntVarP(&ingestWorkers, "workers", "w", 0, "maximum concurrent files (0 uses the configured value)")
	ingestCmd.Flags().IntVar(&ingestTimeout, "timeout", 0, "per-file timeout in seconds (0 uses the configured value)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := buildApp(ctx, func(cfg *config.AppConfig) {
		if ingestRecursive {
			cfg.Batch.Recursive = true
		}
		if ingestWorkers > 0 {
			cfg.Batch.MaxConcurrentFiles = ingestWorkers
		}
		if ingestTimeout > 0 {
			cfg.Batch.FileTimeoutSeconds = ingestTimeout
		}
	})
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.Batch.ProcessBatch(ctx, args)
	if err != nil {
		return fmt.Errorf("batch ingestion failed: %w", err)
	}

	cmd.Printf("run %s: %d total, %d succeeded, %d failed\n",
		report.RunID, report.Total, report.Succeeded, report.Failed)
	for _, failure := range report.Failures {
		cmd.Printf("  failed: %s: %s\n", failure.FilePath, failure.Error)
	}
	return nil
}
