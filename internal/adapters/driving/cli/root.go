// Package cli implements the cobra command tree that drives the core
// services. Services are injected by main before Execute runs.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/inkwell-labs/inkwell-cli/internal/core/ports/driven"
	"github.com/inkwell-labs/inkwell-cli/internal/core/ports/driving"
	"github.com/inkwell-labs/inkwell-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Injected services. Nil services make the commands that need them fail
// with a clear error instead of panicking.
var (
	libraryService   driving.LibraryService
	retrievalService driving.RetrievalService
	pipelineService  driving.PipelineService
	configStore      driven.ConfigStore
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "inkwell",
	Short: "A self-improving library of rewritten web content",
	Long: `Inkwell ingests web pages, rewrites them through a chain of AI agents,
and keeps every version. Retrieval is ranked by a model that learns from
your ratings, so the results get better the more you use it.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose output")
}

// Services bundles everything the commands need.
type Services struct {
	Library   driving.LibraryService
	Retrieval driving.RetrievalService
	Pipeline  driving.PipelineService
	Config    driven.ConfigStore
}

// SetServices injects the core services. Must be called before Execute.
func SetServices(s Services) {
	libraryService = s.Library
	retrievalService = s.Retrieval
	pipelineService = s.Pipeline
	configStore = s.Config
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
