package screenlore

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/screenlore/go-screenlore/pkg/store"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the graph artifacts and report record counts",
	Long: `Load every artifact file from the configured directory, report how many
records each one contributed, how many records were dropped by strict
field validation, and which files are missing.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	artifacts := store.New(cfg.Artifacts.Dir)
	snap, err := artifacts.Snapshot()
	if err != nil {
		return fmt.Errorf("artifact directory %s: %w", cfg.Artifacts.Dir, err)
	}

	counts := snap.RecordCounts()
	dropped := snap.DroppedRecords()
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("Artifacts in %s:\n", cfg.Artifacts.Dir)
	for _, name := range names {
		fmt.Printf("  %-22s %5d records, %d dropped\n", name, counts[name], dropped[name])
	}
	if missing := snap.MissingArtifacts(); len(missing) > 0 {
		fmt.Printf("Missing artifacts:\n")
		for _, name := range missing {
			fmt.Printf("  %s\n", name)
		}
		return fmt.Errorf("%d artifact(s) missing", len(missing))
	}
	return nil
}
