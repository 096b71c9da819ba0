package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/snowq-dev/snowq/internal/schema"
)

// InferOptions holds flags for the infer command.
type InferOptions struct {
	*RootOptions
	MaxDepth       int
	ElementSamples int
}

// NewInferCommand creates the infer command.
func NewInferCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InferOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "infer <documents.json>",
		Short: "Infer the path schema from sample JSON documents",
		Long: `Infer walks sample JSON documents and prints the unified path schema:
every dotted path with its detected type, array hierarchy, frequency across
samples, and whether the path is queryable. Pass "-" to read from stdin.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfer(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "maximum nesting depth to walk (default from config)")
	cmd.Flags().IntVar(&opts.ElementSamples, "element-samples", 0, "array elements sampled per array (default from config)")

	return cmd
}

func runInfer(opts *InferOptions, docsPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading config", err)
	}
	if opts.MaxDepth > 0 {
		cfg.MaxDepth = opts.MaxDepth
	}
	if opts.ElementSamples > 0 {
		cfg.ElementSamples = opts.ElementSamples
	}

	docs, err := LoadDocuments(docsPath, cmd.InOrStdin())
	if err != nil {
		_ = formatter.Error(ErrCodeLoad, err.Error(), nil)
		return err
	}
	formatter.VerboseLog("Loaded %d document(s) from %s", len(docs), docsPath)

	ps := cfg.Inferencer().Infer(docs)

	if formatter.Format == "json" {
		return formatter.Success(ps)
	}
	writeSchemaTable(formatter, ps)
	return nil
}

// writeSchemaTable renders the schema as an aligned text table.
func writeSchemaTable(formatter *OutputFormatter, ps *schema.PathSchema) {
	w := formatter.Writer

	queryable := 0
	for _, p := range ps.SortedPaths() {
		if ps.Paths[p].Queryable {
			queryable++
		}
	}
	fmt.Fprintf(w, "✓ Inferred %d path(s) from %d sample(s), %d queryable\n",
		len(ps.Paths), ps.TotalSamples, queryable)
	if ps.RootArray {
		fmt.Fprintln(w, "  (documents are root-level arrays; paths are relative to each element)")
	}
	fmt.Fprintln(w)

	headers := []string{"PATH", "TYPE", "ARRAYS", "FREQ", "Q", "SAMPLES"}
	rows := make([][]string, 0, len(ps.Paths))
	for _, p := range ps.SortedPaths() {
		info := ps.Paths[p]
		typeName := info.Kind.String()
		if info.Kind == schema.KindArray && info.ElemKind != schema.KindUnknown {
			typeName = fmt.Sprintf("array<%s>", info.ElemKind)
		}
		mark := "-"
		if info.Queryable {
			mark = "✓"
		}
		rows = append(rows, []string{
			p,
			typeName,
			strings.Join(info.ArrayHierarchy, " > "),
			fmt.Sprintf("%.0f%%", ps.Frequency(p)*100),
			mark,
			strings.Join(info.Samples, ", "),
		})
	}

	widths := columnWidths(headers, rows)
	writeRow(w, headers, widths, headerStyle(formatter))
	for _, row := range rows {
		writeRow(w, row, widths, "")
	}
}

// columnWidths computes the display width of each column, samples included.
// Display width, not byte length: sample values may carry wide runes.
func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func writeRow(w io.Writer, cells []string, widths []int, style string) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		if i == len(cells)-1 {
			parts[i] = cell // last column ragged
			continue
		}
		parts[i] = runewidth.FillRight(cell, widths[i])
	}
	line := strings.TrimRight(strings.Join(parts, "  "), " ")
	if style != "" {
		line = style + line + "\x1b[0m"
	}
	fmt.Fprintln(w, line)
}

// headerStyle returns the ANSI bold prefix when stdout is a terminal.
func headerStyle(formatter *OutputFormatter) string {
	f, ok := formatter.Writer.(*os.File)
	if !ok {
		return ""
	}
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return "\x1b[1m"
	}
	return ""
}
