package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/snowq-dev/snowq/internal/cache"
	"github.com/snowq-dev/snowq/internal/engine"
	"github.com/snowq-dev/snowq/internal/schema"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Table      string
	Column     string
	Conditions string
	Docs       string
	CachePath  string
	NoCache    bool
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a Snowflake query from field conditions",
		Long: `Generate compiles a condition string like "age[>:18],status[=:active:OR]"
into a Snowflake SELECT against the given table and VARIANT column. The path
schema comes from the cache when available, otherwise from the sample
documents given with --docs.`,
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Table, "table", "t", "", "target table name (required)")
	cmd.Flags().StringVar(&opts.Column, "column", "", "VARIANT column holding the documents (default from config)")
	cmd.Flags().StringVarP(&opts.Conditions, "conditions", "c", "", "field condition string (required)")
	cmd.Flags().StringVarP(&opts.Docs, "docs", "d", "", "sample documents file, or \"-\" for stdin")
	cmd.Flags().StringVar(&opts.CachePath, "cache", "", "schema cache database path (overrides config)")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "bypass the schema cache")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("conditions")

	return cmd
}

func runGenerate(opts *GenerateOptions, cmd *cobra.Command) error {
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
	if opts.Column == "" {
		opts.Column = cfg.DefaultColumn
	}
	if opts.CachePath != "" {
		cfg.CachePath = opts.CachePath
	}

	ps, err := loadSchema(cmd, opts, cfg, formatter)
	if err != nil {
		return err
	}

	res := engine.Generate(engine.Request{
		Table:      opts.Table,
		Column:     opts.Column,
		Conditions: opts.Conditions,
		Schema:     ps,
	})

	if opts.Verbose && res.Plan != nil {
		fmt.Fprint(formatter.GetErrWriter(), spew.Sdump(res.Plan))
	}

	return outputGenerateResult(formatter, res)
}

// loadSchema returns the path schema for the request: cache hit, or inference
// over --docs followed by a cache write.
func loadSchema(cmd *cobra.Command, opts *GenerateOptions, cfg Config, formatter *OutputFormatter) (*schema.PathSchema, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	key := cache.Key{Table: opts.Table, Column: opts.Column}

	var store *cache.Store
	if cfg.CachePath != "" && !opts.NoCache {
		s, err := cache.Open(cfg.CachePath, time.Duration(cfg.CacheTTL))
		if err != nil {
			_ = formatter.Error(ErrCodeCache, err.Error(), nil)
			return nil, WrapExitError(ExitCommandError, "opening schema cache", err)
		}
		store = s
		defer store.Close()

		ps, ok, err := store.Get(ctx, key)
		if err != nil {
			formatter.VerboseLog("cache read failed, re-inferring: %v", err)
		} else if ok {
			formatter.VerboseLog("schema cache hit for %s.%s (%d paths)", key.Table, key.Column, len(ps.Paths))
			return ps, nil
		}
	}

	if opts.Docs == "" {
		err := NewExitError(ExitCommandError, "no cached schema for this table; supply sample documents with --docs")
		_ = formatter.Error(ErrCodeLoad, err.Message, nil)
		return nil, err
	}

	docs, err := LoadDocuments(opts.Docs, cmd.InOrStdin())
	if err != nil {
		_ = formatter.Error(ErrCodeLoad, err.Error(), nil)
		return nil, err
	}
	formatter.VerboseLog("Loaded %d document(s) from %s", len(docs), opts.Docs)

	ps := cfg.Inferencer().Infer(docs)
	if store != nil {
		if err := store.Put(ctx, key, ps); err != nil {
			formatter.VerboseLog("cache write failed: %v", err)
		}
	}
	return ps, nil
}

// outputGenerateResult writes the engine result in the configured format and
// maps a failed generation to exit code 1.
func outputGenerateResult(formatter *OutputFormatter, res *engine.Result) error {
	if formatter.Format == "json" {
		response := CLIResponse{Status: "ok", Data: res, TraceID: res.TraceID}
		if res.Failure != nil {
			response.Status = "error"
			response.Error = &CLIError{Code: string(res.Failure.Code), Message: res.Failure.Message}
		}
		if err := json.NewEncoder(formatter.Writer).Encode(response); err != nil {
			return err
		}
		if res.Failure != nil {
			return NewExitError(ExitFailure, res.Failure.Message)
		}
		return nil
	}

	for _, warning := range res.Warnings {
		fmt.Fprintf(formatter.GetErrWriter(), "warning: %s\n", warning)
	}
	fmt.Fprintln(formatter.Writer, res.SQL)
	if res.Failure != nil {
		return NewExitError(ExitFailure, res.Failure.Message)
	}
	return nil
}
