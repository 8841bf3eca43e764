package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inkwell-labs/inkwell-cli/internal/adapters/driving/tui"
	"github.com/inkwell-labs/inkwell-cli/internal/core/ports/driving"
)

var processBatch bool

var processCmd = &cobra.Command{
	Use:   "process [url]",
	Short: "Fetch a page and run it through the rewrite pipeline",
	Long: `Fetches the page, saves the original, runs the writer, reviewer, and
editor agents, then opens the review screen so you can accept, edit, or
regenerate the result. Use --batch to accept the final AI stage without
review.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().BoolVar(&processBatch, "batch", false, "skip interactive review")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	url := args[0]

	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	var reviewer driving.Reviewer
	if !processBatch {
		reviewer = tui.NewReviewer()
	}

	report, err := pipelineService.Process(context.Background(), url, reviewer)
	if err != nil {
		if errors.Is(err, tui.ErrReviewCancelled) {
			cmd.Println("Review cancelled; pipeline versions were kept but none activated.")
			return nil
		}
		return fmt.Errorf("processing %s: %w", url, err)
	}

	cmd.Printf("Processed %s\n", report.URL)
	for _, stage := range report.VersionIDs {
		marker := " "
		if stage.ID == report.FinalID {
			marker = "*"
		}
		cmd.Printf("%s %-12s %s\n", marker, stage.Type, stage.ID)
	}
	cmd.Printf("\nActive version: %s\n", report.FinalID)
	return nil
}
