package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/snowq-dev/snowq/internal/condition"
)

// ConditionsOptions holds flags for the conditions command.
type ConditionsOptions struct {
	*RootOptions
}

// parsedCondition is the JSON shape for one parsed condition.
type parsedCondition struct {
	Field    string   `json:"field"`
	Operator string   `json:"operator"`
	Value    string   `json:"value,omitempty"`
	Values   []string `json:"values,omitempty"`
	Cast     string   `json:"cast,omitempty"`
	Logic    string   `json:"logic"`
}

// NewConditionsCommand creates the conditions command.
func NewConditionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConditionsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "conditions <condition-string>",
		Short: "Parse a condition string and show the result",
		Long: `Conditions parses a field-condition string without touching a schema,
showing how each token splits into field, operator, value, cast, and logic.
Useful for debugging quoting and bracket nesting before running generate.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConditions(opts, args[0], cmd)
		},
	}

	return cmd
}

func runConditions(opts *ConditionsOptions, input string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	conds, errs := condition.Parse(input)

	parsed := make([]parsedCondition, len(conds))
	for i, c := range conds {
		parsed[i] = parsedCondition{
			Field:    c.Field,
			Operator: string(c.Operator),
			Value:    c.Value,
			Values:   c.Values,
			Cast:     c.Cast,
			Logic:    string(c.Logic),
		}
	}

	if formatter.Format == "json" {
		messages := make([]string, len(errs))
		for i, err := range errs {
			messages[i] = err.Error()
		}
		payload := map[string]interface{}{"conditions": parsed}
		if len(messages) > 0 {
			payload["errors"] = messages
		}
		if err := formatter.Success(payload); err != nil {
			return err
		}
		if len(conds) == 0 && len(errs) > 0 {
			return NewExitError(ExitFailure, "no condition parsed cleanly")
		}
		return nil
	}

	if len(conds) > 0 {
		fmt.Fprintf(formatter.Writer, "✓ Parsed %d condition(s)\n\n", len(conds))
		for _, c := range parsed {
			fmt.Fprintf(formatter.Writer, "  %s\n", describeCondition(c))
		}
	}
	if len(errs) > 0 {
		if len(conds) > 0 {
			fmt.Fprintln(formatter.Writer)
		}
		fmt.Fprintf(formatter.Writer, "✗ %d parse error(s)\n\n", len(errs))
		for _, err := range errs {
			fmt.Fprintf(formatter.Writer, "  %v\n", err)
		}
	}
	if len(conds) == 0 && len(errs) > 0 {
		return NewExitError(ExitFailure, "no condition parsed cleanly")
	}
	return nil
}

// describeCondition renders one parsed condition on a single line.
func describeCondition(c parsedCondition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", c.Field, c.Operator)
	switch {
	case len(c.Values) > 0:
		fmt.Fprintf(&b, " (%s)", strings.Join(c.Values, ", "))
	case c.Value != "":
		fmt.Fprintf(&b, " %s", c.Value)
	}
	if c.Cast != "" {
		fmt.Fprintf(&b, " [cast: %s]", c.Cast)
	}
	fmt.Fprintf(&b, " [%s]", c.Logic)
	return b.String()
}
