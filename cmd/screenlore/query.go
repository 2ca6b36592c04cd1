package screenlore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/screenlore/go-screenlore/pkg/types"
)

var (
	queryMode     string
	queryBaseline bool
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Answer a single question from local artifacts",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVar(&queryMode, "mode", "auto", "Preferred mode: auto, kg, ntg, hybrid, baseline_rag")
	queryCmd.Flags().BoolVar(&queryBaseline, "baseline-comparison", false, "Attach the baseline comparison answer")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := newLogger(cfg)
	svc, cleanup := buildService(cfg, log)
	defer cleanup()

	req := types.QueryRequest{
		Question:                  strings.Join(args, " "),
		PreferredMode:             types.Mode(queryMode),
		IncludeEvidence:           true,
		IncludeBaselineComparison: queryBaseline,
	}
	resp, err := svc.Answer(context.Background(), req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
