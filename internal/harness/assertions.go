package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Output   string // Full output for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Output != "" {
		fmt.Fprintf(&buf, "\nOutput:\n")
		for i, line := range outputLines(e.Output) {
			fmt.Fprintf(&buf, "  %3d %s\n", i+1, line)
		}
	}

	return buf.String()
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns one message per failed assertion.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	expectsError := slices.ContainsFunc(assertions, func(a Assertion) bool {
		return a.Type == AssertErrorKind
	})
	if result.Failed() && !expectsError {
		return []string{(&AssertionError{
			Type:     "conversion",
			Expected: "successful conversion",
			Actual:   result.ErrorMessage,
		}).Error()}
	}

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertOutputContains:
			err = assertOutputContains(result.Output, assertion)
		case AssertOutputOrder:
			err = assertOutputOrder(result.Output, assertion)
		case AssertBucketOrder:
			err = assertBucketOrder(result, assertion)
		case AssertForwardReferences:
			err = assertNoForwardReferences(result.Output)
		case AssertErrorKind:
			err = assertErrorKind(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

func assertOutputContains(output string, assertion Assertion) error {
	lines := outputLines(output)
	for _, want := range assertion.Lines {
		if !slices.Contains(lines, strings.TrimSpace(want)) {
			return &AssertionError{
				Type:     AssertOutputContains,
				Expected: fmt.Sprintf("line %q", want),
				Actual:   "not found in output",
				Output:   output,
			}
		}
	}
	return nil
}

// assertOutputOrder checks that lines appear in order.
// They don't need to be consecutive.
func assertOutputOrder(output string, assertion Assertion) error {
	lines := outputLines(output)
	next := 0
	for _, want := range assertion.Lines {
		want = strings.TrimSpace(want)
		at := slices.Index(lines[next:], want)
		if at < 0 {
			actual := "missing from output"
			if slices.Contains(lines, want) {
				actual = "appears before the preceding expected line"
			}
			return &AssertionError{
				Type:     AssertOutputOrder,
				Expected: fmt.Sprintf("lines in order: %q", assertion.Lines),
				Actual:   fmt.Sprintf("%q %s", want, actual),
				Output:   output,
			}
		}
		next += at + 1
	}
	return nil
}

func assertBucketOrder(result *Result, assertion Assertion) error {
	if !slices.Equal(result.BucketOrder, assertion.Buckets) {
		return &AssertionError{
			Type:     AssertBucketOrder,
			Expected: fmt.Sprintf("%v", assertion.Buckets),
			Actual:   fmt.Sprintf("%v", result.BucketOrder),
		}
	}
	return nil
}

func assertErrorKind(result *Result, assertion Assertion) error {
	if result.ErrorKind != assertion.Kind {
		actual := "conversion succeeded"
		if result.Failed() {
			actual = fmt.Sprintf("%s (%s)", result.ErrorKind, result.ErrorMessage)
		}
		return &AssertionError{
			Type:     AssertErrorKind,
			Expected: assertion.Kind,
			Actual:   actual,
			Output:   result.Output,
		}
	}
	return nil
}

// assertNoForwardReferences scans the text for bucket blocks and checks that
// every bucket-named item was declared by an earlier block.
func assertNoForwardReferences(output string) error {
	buckets := map[string]bool{}
	for _, line := range outputLines(output) {
		if name, ok := bucketHeader(line); ok {
			buckets[name] = true
		}
	}

	declared := map[string]bool{}
	current := ""
	for _, line := range outputLines(output) {
		if name, ok := bucketHeader(line); ok {
			current = name
			continue
		}
		if line == "}" {
			if current != "" {
				declared[current] = true
			}
			current = ""
			continue
		}
		fields := strings.Fields(line)
		if current == "" || len(fields) != 4 || fields[0] != "item" {
			continue
		}
		if buckets[fields[1]] && !declared[fields[1]] {
			return &AssertionError{
				Type:     AssertForwardReferences,
				Expected: fmt.Sprintf("bucket %s declared before %s uses it", fields[1], current),
				Actual:   "forward reference",
				Output:   output,
			}
		}
	}
	return nil
}

// bucketHeader matches "<type> <name> {" lines, excluding rule blocks.
func bucketHeader(line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) != 3 || fields[2] != "{" || fields[0] == "rule" {
		return "", false
	}
	return fields[1], true
}

func outputLines(output string) []string {
	raw := strings.Split(strings.TrimRight(output, "\n"), "\n")
	lines := make([]string, len(raw))
	for i, line := range raw {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}
