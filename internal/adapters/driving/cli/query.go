package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
)

var (
	queryLimit int
	queryJSON  bool
	queryRate  bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search the library",
	Long: `Searches active versions by semantic similarity, ranked by the learned
model. Rate results with --rate to improve future rankings.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 5, "maximum number of results")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	queryCmd.Flags().BoolVar(&queryRate, "rate", false, "prompt to rate each result")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	text := args[0]

	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	ctx := context.Background()
	results, err := retrievalService.Query(ctx, text, queryLimit)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputQueryJSON(cmd, results)
	}

	if err := outputQueryTable(cmd, results); err != nil {
		return err
	}

	if queryRate && len(results) > 0 {
		return rateResults(ctx, cmd, text, results)
	}
	return nil
}

func outputQueryJSON(cmd *cobra.Command, results []domain.RetrievalResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryTable(cmd *cobra.Command, results []domain.RetrievalResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		v := results[i].Version
		cmd.Printf("  [%d] %s (%s) score=%.3f sim=%.3f\n",
			i+1, v.URL, v.Type, results[i].Score, results[i].Similarity)
		cmd.Printf("      id: %s\n", v.ID)
		cmd.Printf("      %s\n", snippet(v.Content, 120))
		cmd.Println()
	}

	return nil
}

// rateResults walks the results prompting for a 1-5 star rating each.
// Empty input skips a result, q stops rating.
func rateResults(ctx context.Context, cmd *cobra.Command, query string, results []domain.RetrievalResult) error {
	reader := bufio.NewReader(cmd.InOrStdin())

	for i := range results {
		cmd.Printf("Rate result %d [1-5, enter to skip, q to quit]: ", i+1)

		line, err := reader.ReadString('\n')
		if err != nil {
			// EOF ends rating quietly.
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "q" {
			return nil
		}

		stars, err := strconv.Atoi(line)
		if err != nil {
			cmd.Println("Please enter a number between 1 and 5.")
			continue
		}

		if err := retrievalService.Rate(ctx, query, results[i].Version.ID, stars); err != nil {
			if errors.Is(err, domain.ErrOutOfRange) {
				cmd.Println("Please enter a number between 1 and 5.")
				continue
			}
			return fmt.Errorf("recording rating: %w", err)
		}
		cmd.Println("Thanks, rating recorded.")
	}
	return nil
}

// snippet returns the first n characters of content on a single line.
func snippet(content string, n int) string {
	content = strings.Join(strings.Fields(content), " ")
	if len(content) <= n {
		return content
	}
	return content[:n] + "..."
}
