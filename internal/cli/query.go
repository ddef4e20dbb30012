package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var queryTopK int

var queryCmd = &cobra.Command{
	Use:   "query [text...]",
	Short: "Ask a question over the ingested knowledge",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 5, "passages to retrieve per index")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	answer, err := a.Query.Query(ctx, strings.Join(args, " "), queryTopK)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	cmd.Println(answer)
	return nil
}
