package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/crushtxt/internal/compiler"
	"github.com/roach88/crushtxt/internal/ir"
	"github.com/roach88/crushtxt/internal/store"
)

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	OutDir   string // directory for <basename>.txt outputs
	Database string // optional ledger path
}

// BatchItem is the outcome of one input.
type BatchItem struct {
	Seq       int64  `json:"seq"`
	Source    string `json:"source"`
	Output    string `json:"output,omitempty"`
	Digest    string `json:"digest,omitempty"`
	Status    string `json:"status"`
	Cached    bool   `json:"cached,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	RunID     string      `json:"run_id"`
	Items     []BatchItem `json:"items"`
	Converted int         `json:"converted"`
	Cached    int         `json:"cached"`
	Failed    int         `json:"failed"`
	Total     int         `json:"total"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch --out-dir DIR [--db ledger.db] <dump.json>...",
		Short: "Convert many dumps into a directory",
		Long: `Convert each dump to <out-dir>/<basename>.txt.

Every run gets a UUIDv7 run id. With --db, each conversion is recorded in a
SQLite ledger together with the digest of the decoded dump, and a dump whose
digest already converted successfully is served from the ledger.

A failing input does not stop the batch.

Exit codes:
  0 - All inputs converted
  1 - One or more inputs failed
  2 - Command error (output directory, ledger, duplicate names)

Examples:
  crushtxt batch --out-dir maps dumps/*.json
  crushtxt batch --out-dir maps --db ledger.db dumps/*.json --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.OutDir, "out-dir", "", "output directory (required)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite conversion ledger")
	_ = cmd.MarkFlagRequired("out-dir")

	return cmd
}

func runBatch(ctx context.Context, opts *BatchOptions, inputs []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	targets, err := outputPaths(opts.OutDir, inputs)
	if err != nil {
		return formatter.Fail(ErrCodeDuplicate, ExitCommandError, "invalid batch", err)
	}

	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return formatter.Fail(ErrCodeWriteFailed, ExitCommandError, "failed to create output directory", err)
	}

	runID, err := uuid.NewV7()
	if err != nil {
		return formatter.Fail(ErrCodeGeneric, ExitCommandError, "failed to generate run id", err)
	}

	b := &batch{runID: runID.String(), logger: slog.Default().With("run_id", runID.String())}
	if opts.Database != "" {
		b.logger.Info("opening ledger", "path", opts.Database)
		st, err := store.Open(opts.Database)
		if err != nil {
			return formatter.Fail(ErrCodeLedger, ExitCommandError, "failed to open ledger", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing ledger", "error", closeErr)
			}
		}()
		b.ledger = st

		err = st.WriteRun(ctx, store.Run{
			ID:          b.runID,
			ToolVersion: ir.ToolVersion,
			IRVersion:   ir.IRVersion,
			InputCount:  len(inputs),
		})
		if err != nil {
			return formatter.Fail(ErrCodeLedger, ExitCommandError, "failed to record run", err)
		}
	}

	result := BatchResult{
		RunID: b.runID,
		Items: make([]BatchItem, 0, len(inputs)),
		Total: len(inputs),
	}

	for i, input := range inputs {
		item, err := b.convert(ctx, int64(i+1), input, targets[i])
		if err != nil {
			return formatter.Fail(ErrCodeLedger, ExitCommandError, "ledger write failed", err)
		}
		result.Items = append(result.Items, item)

		switch {
		case item.Status == string(store.StatusFailed):
			result.Failed++
		case item.Cached:
			result.Cached++
		default:
			result.Converted++
		}
	}

	if formatter.Format == "json" {
		if err := outputBatchJSON(formatter, result); err != nil {
			return err
		}
	} else {
		outputBatchText(formatter, result)
	}

	if result.Failed > 0 {
		return &ExitError{
			Code:     ExitFailure,
			Message:  fmt.Sprintf("%d of %d conversion(s) failed", result.Failed, result.Total),
			Reported: true,
		}
	}
	return nil
}

type batch struct {
	runID  string
	ledger *store.Store
	logger *slog.Logger
}

// convert handles one input. Conversion failures are part of the returned
// item; only ledger failures are returned as errors.
func (b *batch) convert(ctx context.Context, seq int64, input, target string) (BatchItem, error) {
	item := BatchItem{Seq: seq, Source: input}
	logger := b.logger.With("seq", seq, "source", input)

	text, err := b.compile(ctx, &item, input, logger)
	if err == nil {
		if writeErr := os.WriteFile(target, text, 0644); writeErr != nil {
			err = writeErr
		}
	}

	if err != nil {
		item.Status = string(store.StatusFailed)
		item.ErrorKind = string(compiler.KindOf(err))
		item.Error = err.Error()
		logger.Info("conversion failed", "kind", item.ErrorKind, "error", err)
	} else {
		item.Status = string(store.StatusOK)
		item.Output = target
		logger.Debug("conversion written", "output", target, "cached", item.Cached)
	}

	if b.ledger == nil {
		return item, nil
	}

	conv := store.Conversion{
		RunID:     b.runID,
		Seq:       seq,
		Source:    input,
		Digest:    item.Digest,
		Status:    store.Status(item.Status),
		ErrorKind: item.ErrorKind,
		Message:   item.Error,
	}
	if err == nil {
		conv.Output = string(text)
	}
	if err := b.ledger.RecordConversion(ctx, conv); err != nil {
		return item, err
	}
	return item, nil
}

// compile loads and digests the input, then serves it from the ledger when
// the same digest converted before, or compiles it.
func (b *batch) compile(ctx context.Context, item *BatchItem, input string, logger *slog.Logger) ([]byte, error) {
	doc, err := compiler.LoadFile(input)
	if err != nil {
		return nil, err
	}

	item.Digest, err = ir.DocumentDigest(doc)
	if err != nil {
		return nil, err
	}

	if b.ledger != nil {
		prior, ok, err := b.ledger.LookupByDigest(ctx, item.Digest)
		if err != nil {
			return nil, err
		}
		if ok {
			logger.Debug("reusing ledger conversion", "digest", item.Digest, "prior_run", prior.RunID)
			item.Cached = true
			return []byte(prior.Output), nil
		}
	}

	out, err := compiler.Compile(doc)
	if err != nil {
		return nil, err
	}
	return out.Text, nil
}

// outputPaths maps each input to <dir>/<basename>.txt and rejects inputs
// that would overwrite each other.
func outputPaths(dir string, inputs []string) ([]string, error) {
	paths := make([]string, len(inputs))
	seen := make(map[string]string, len(inputs))
	for i, input := range inputs {
		base := filepath.Base(input)
		name := strings.TrimSuffix(base, filepath.Ext(base)) + ".txt"
		if prev, ok := seen[name]; ok {
			return nil, fmt.Errorf("%s and %s both write %s", prev, input, name)
		}
		seen[name] = input
		paths[i] = filepath.Join(dir, name)
	}
	return paths, nil
}

func outputBatchJSON(formatter *OutputFormatter, result BatchResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}
	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_BATCH_FAILED",
			Message: fmt.Sprintf("%d conversion(s) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(formatter.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

func outputBatchText(formatter *OutputFormatter, result BatchResult) {
	w := formatter.Writer
	for _, item := range result.Items {
		switch {
		case item.Status == string(store.StatusFailed):
			fmt.Fprintf(w, "✗ %s\n", item.Source)
			if item.ErrorKind != "" {
				fmt.Fprintf(w, "  Error [%s]: %s\n", item.ErrorKind, item.Error)
			} else {
				fmt.Fprintf(w, "  Error: %s\n", item.Error)
			}
		case item.Cached:
			fmt.Fprintf(w, "✓ %s -> %s (cached)\n", item.Source, item.Output)
		default:
			fmt.Fprintf(w, "✓ %s -> %s\n", item.Source, item.Output)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Run %s: %d converted, %d cached, %d failed, %d total\n",
		result.RunID, result.Converted, result.Cached, result.Failed, result.Total)
}
