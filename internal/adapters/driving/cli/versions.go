package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "Manage stored document versions",
	Long: `List, activate, and delete the stored versions of a URL.
Every save keeps the full history; only active versions are searchable.`,
}

var versionsListCmd = &cobra.Command{
	Use:   "list [url]",
	Short: "List all versions of a URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionsList,
}

var versionsActivateCmd = &cobra.Command{
	Use:   "activate [id]",
	Short: "Make a version the active one for its URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionsActivate,
}

var versionsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Permanently remove a version",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionsDelete,
}

var versionsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print the full content of a version",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionsShow,
}

func init() {
	versionsCmd.AddCommand(versionsListCmd)
	versionsCmd.AddCommand(versionsActivateCmd)
	versionsCmd.AddCommand(versionsDeleteCmd)
	versionsCmd.AddCommand(versionsShowCmd)
	rootCmd.AddCommand(versionsCmd)
}

func runVersionsList(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	versions, err := libraryService.List(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("listing versions: %w", err)
	}

	if len(versions) == 0 {
		cmd.Println("No versions found.")
		return nil
	}

	for i := range versions {
		v := versions[i]
		marker := " "
		if v.Active {
			marker = "*"
		}
		cmd.Printf("%s %s  %-12s  %s  %d words\n",
			marker, v.ID, v.Type, v.CreatedAt.Format("2006-01-02 15:04"), v.WordCount())
	}
	return nil
}

func runVersionsActivate(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	if err := libraryService.Activate(context.Background(), args[0]); err != nil {
		return fmt.Errorf("activating version: %w", err)
	}

	cmd.Printf("Version %s is now active.\n", args[0])
	return nil
}

func runVersionsDelete(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	if err := libraryService.Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("deleting version: %w", err)
	}

	cmd.Printf("Version %s deleted.\n", args[0])
	return nil
}

func runVersionsShow(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	v, err := libraryService.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("loading version: %w", err)
	}

	cmd.Printf("URL:     %s\n", v.URL)
	cmd.Printf("Type:    %s\n", v.Type)
	cmd.Printf("Created: %s\n", v.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("Active:  %v\n", v.Active)
	cmd.Println()
	cmd.Println(v.Content)
	return nil
}
