package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snowq-dev/snowq/internal/schema"
)

// SuggestOptions holds flags for the suggest command.
type SuggestOptions struct {
	*RootOptions
}

// NewSuggestCommand creates the suggest command.
func NewSuggestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SuggestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "suggest <documents.json>",
		Short: "Suggest condition strings for sample documents",
		Long: `Suggest infers the path schema and proposes ready-to-use condition
strings: presence checks on frequent paths, IN filters over categorical
values, and range filters over numeric fields.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuggest(opts, args[0], cmd)
		},
	}

	return cmd
}

func runSuggest(opts *SuggestOptions, docsPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading config", err)
	}

	docs, err := LoadDocuments(docsPath, cmd.InOrStdin())
	if err != nil {
		_ = formatter.Error(ErrCodeLoad, err.Error(), nil)
		return err
	}

	ps := cfg.Inferencer().Infer(docs)
	suggestions := schema.Suggestions(ps)

	if formatter.Format == "json" {
		return formatter.Success(map[string]interface{}{
			"suggestions": suggestions,
			"paths":       len(ps.Paths),
			"samples":     ps.TotalSamples,
		})
	}

	if len(suggestions) == 0 {
		fmt.Fprintln(formatter.Writer, "No suggestions: no queryable paths found in the samples")
		return nil
	}
	fmt.Fprintf(formatter.Writer, "✓ %d suggestion(s) from %d path(s):\n\n", len(suggestions), len(ps.Paths))
	for _, s := range suggestions {
		fmt.Fprintf(formatter.Writer, "  %s\n", s)
	}
	return nil
}
