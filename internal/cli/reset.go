package cli

import (
	"DocuGraph/internal/rag/pipeline"
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop all ingested knowledge",
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetYes {
		return fmt.Errorf("reset drops all ingested knowledge; re-run with --yes to confirm")
	}

	ctx := context.Background()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := pipeline.ResetWorkspace(ctx, a.Storages); err != nil {
		return err
	}
	cmd.Println("workspace reset")
	return nil
}
