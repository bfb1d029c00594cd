package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/crushtxt/internal/compiler"
)

func runConvert(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	slog.Debug("converting dump", "path", path)

	out, err := compiler.ConvertFile(path)
	if err != nil {
		return formatter.ConversionError(err, ExitCommandError)
	}

	if opts.Output == "" {
		if _, err := formatter.Writer.Write(out.Text); err != nil {
			return formatter.Fail(ErrCodeWriteFailed, ExitCommandError, "failed to write output", err)
		}
		return nil
	}

	if err := os.WriteFile(opts.Output, out.Text, 0644); err != nil {
		return formatter.Fail(ErrCodeWriteFailed, ExitCommandError, "failed to write "+opts.Output, err)
	}
	slog.Debug("crush map written", "path", opts.Output, "bytes", len(out.Text))
	return nil
}
