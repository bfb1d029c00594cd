package harness

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/crushtxt/internal/compiler"
	"github.com/roach88/crushtxt/internal/ir"
)

// Harness executes scenarios through the conversion pipeline.
type Harness struct {
	logger *slog.Logger
}

// New creates a harness that logs to logger. A nil logger discards logs.
func New(logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{logger: logger}
}

// Run executes a scenario with a discarding logger.
func Run(scenario *Scenario) (*Result, error) {
	return New(nil).Run(scenario)
}

// Run loads the scenario's dump, converts it and evaluates the assertions.
//
// A conversion error is part of the result, not a Go error; Run only returns
// an error when the scenario itself cannot be executed.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	data, filename, err := scenarioInput(scenario)
	if err != nil {
		return nil, err
	}

	result := NewResult()

	doc, err := compiler.Load(data, filename)
	if err != nil {
		h.recordFailure(scenario, result, err)
	} else {
		if result.Digest, err = ir.DocumentDigest(doc); err != nil {
			return nil, fmt.Errorf("digest %s: %w", scenario.Name, err)
		}
		out, err := compiler.Compile(doc)
		if err != nil {
			h.recordFailure(scenario, result, err)
		} else {
			result.Output = string(out.Text)
			for _, b := range out.Order {
				result.BucketOrder = append(result.BucketOrder, b.Name)
			}
			h.logger.Info("scenario converted",
				"scenario", scenario.Name,
				"buckets", len(out.Order),
				"bytes", len(out.Text),
			)
		}
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

func (h *Harness) recordFailure(scenario *Scenario, result *Result, err error) {
	result.ErrorKind = string(compiler.KindOf(err))
	result.ErrorMessage = err.Error()
	h.logger.Info("scenario conversion failed",
		"scenario", scenario.Name,
		"kind", result.ErrorKind,
		"error", err,
	)
}

func scenarioInput(scenario *Scenario) ([]byte, string, error) {
	if scenario.Input != "" {
		return []byte(scenario.Input), scenario.Name + ".json", nil
	}
	data, err := os.ReadFile(scenario.Dump)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read dump: %w", err)
	}
	return data, scenario.Dump, nil
}
