package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show library and ranking model statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	stats, err := retrievalService.Statistics(context.Background())
	if err != nil {
		return fmt.Errorf("loading statistics: %w", err)
	}

	cmd.Printf("Versions stored:   %d\n", stats.VersionCount)
	cmd.Printf("Feedback recorded: %d\n", stats.LedgerCount)
	cmd.Printf("Model version:     %d\n", stats.ModelVersion)
	if stats.ModelVersion > 0 {
		cmd.Printf("Last trained:      %s\n", stats.LastTrainedAt.Format("2006-01-02 15:04:05"))
	} else {
		cmd.Println("Last trained:      never (ranking by raw similarity)")
	}
	if stats.LedgerCount > 0 {
		cmd.Printf("Average reward:    %.3f\n", stats.AverageReward)
	}
	return nil
}
