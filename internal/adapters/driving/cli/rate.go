package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
)

var rateCmd = &cobra.Command{
	Use:   "rate [query] [version-id] [stars]",
	Short: "Rate a search result",
	Long: `Records a 1-5 star rating for a version returned by a query. Ratings
accumulate in the feedback ledger and periodically retrain the ranking
model.`,
	Args: cobra.ExactArgs(3),
	RunE: runRate,
}

func init() {
	rootCmd.AddCommand(rateCmd)
}

func runRate(cmd *cobra.Command, args []string) error {
	query, id := args[0], args[1]

	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	stars, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("stars must be a number between %d and %d", domain.MinStars, domain.MaxStars)
	}

	if err := retrievalService.Rate(context.Background(), query, id, stars); err != nil {
		switch {
		case errors.Is(err, domain.ErrOutOfRange):
			return fmt.Errorf("stars must be between %d and %d", domain.MinStars, domain.MaxStars)
		case errors.Is(err, domain.ErrInvalidReference):
			return fmt.Errorf("version %s does not exist", id)
		}
		return fmt.Errorf("recording rating: %w", err)
	}

	cmd.Printf("Rated %s: %d stars\n", id, stars)
	return nil
}
