// Command forge writes mock data records generated from a schema file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mock-data-forge/internal/common/logger"
	"mock-data-forge/internal/generator"
	"mock-data-forge/internal/schemafile"
)

var version = "dev"

type options struct {
	input    string
	output   string
	count    int
	seed     uint64
	maxDepth int
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "forge -i schema.json -o data.json [-c count]",
		Short: "The Mock Data Forge: generates synthetic data from a schema",
		Long: `Forge reads a schema file (JSON, or YAML by extension) mapping field names
to type definitions and writes a JSON array of generated records.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "path to the input schema file (e.g. schema.json)")
	f.StringVarP(&opts.output, "output", "o", "", "path for the output JSON data file (e.g. data.json)")
	f.IntVarP(&opts.count, "count", "c", 1, "number of records to generate")
	f.Uint64Var(&opts.seed, "seed", 0, "random seed for reproducible output (0 picks one from the clock)")
	f.IntVar(&opts.maxDepth, "max-depth", generator.DefaultMaxDepth, "maximum object/array nesting")
	f.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// cliError pairs a wrapped error with the sentence printed to the user.
type cliError struct {
	message string
	err     error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func newCLIError(message string, err error) error {
	return &cliError{message: message, err: err}
}

// userMessage returns the text shown after "Error: ".
func userMessage(err error) string {
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.message
	}
	return err.Error()
}

var errInvalidCount = errors.New("count must be a positive integer")

func run(ctx context.Context, out io.Writer, opts *options) error {
	if opts.count <= 0 {
		return newCLIError("Count must be a positive integer.", errInvalidCount)
	}

	zapLog := logger.NewStderr(opts.logLevel)
	defer func() { _ = zapLog.Sync() }()
	log := logger.NewZapAdapter(zapLog)

	fmt.Fprintln(out, "Starting data generation...")

	schema, err := schemafile.Load(opts.input)
	if err != nil {
		return loadError(opts.input, err)
	}
	fmt.Fprintf(out, "   -> Schema loaded from: %s\n", opts.input)

	cfg := generator.LoadConfig()
	cfg.MaxDepth = opts.maxDepth
	src := generator.NewSource(opts.seed)
	log.Debug("generator ready", map[string]interface{}{"seed": src.Seed(), "maxDepth": cfg.MaxDepth})

	records, err := generator.New(cfg, src, log).GenerateMockData(ctx, schema, opts.count)
	if err != nil {
		return newCLIError(fmt.Sprintf("Failed to generate data: %v", err), fmt.Errorf("generate data: %w", err))
	}

	if err := schemafile.WriteRecords(opts.output, records); err != nil {
		return newCLIError(fmt.Sprintf("Failed to write data to file: %v", err), fmt.Errorf("write %s: %w", opts.output, err))
	}

	fmt.Fprintf(out, "Success: Generated %d records to '%s'\n", len(records), opts.output)
	return nil
}

func loadError(path string, err error) error {
	wrapped := fmt.Errorf("load schema %s: %w", path, err)
	switch {
	case errors.Is(err, schemafile.ErrNotFound):
		return newCLIError(fmt.Sprintf("Schema file not found at '%s'", path), wrapped)
	case errors.Is(err, schemafile.ErrInvalidFormat):
		return newCLIError(fmt.Sprintf("Invalid schema format in file at '%s': %v", path, err), wrapped)
	case errors.Is(err, schemafile.ErrUnsupportedFormat):
		return newCLIError(fmt.Sprintf("Unsupported schema file type at '%s'", path), wrapped)
	default:
		return newCLIError(fmt.Sprintf("An unexpected error occurred while loading schema: %v", err), wrapped)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", userMessage(err))
		stop()
		os.Exit(1)
	}
}
