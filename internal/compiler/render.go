package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/crushtxt/internal/ir"
)

// Marker lines bracketing the crush map text.
const (
	HeaderLine = "# begin crush map"
	FooterLine = "# end crush map"
)

// RenderTunables renders one `tunable <name> <value>` line per integer
// tunable, sorted by name, followed by a blank line.
func RenderTunables(doc *ir.Document) string {
	var b strings.Builder
	for _, name := range doc.Tunables.Names() {
		fmt.Fprintf(&b, "tunable %s %d\n", name, doc.Tunables.Values[name])
	}
	b.WriteString("\n")
	return b.String()
}

// RenderDevices renders the devices section in input order.
func RenderDevices(doc *ir.Document) string {
	var b strings.Builder
	b.WriteString("# devices\n")
	for _, d := range doc.Devices {
		fmt.Fprintf(&b, "device %d %s\n", d.ID, d.Name)
	}
	b.WriteString("\n")
	return b.String()
}

// RenderTypes renders the types section in input order.
func RenderTypes(doc *ir.Document) string {
	var b strings.Builder
	b.WriteString("# types\n")
	for _, t := range doc.Types {
		fmt.Fprintf(&b, "type %d %s\n", t.TypeID, t.Name)
	}
	b.WriteString("\n")
	return b.String()
}

// RenderBuckets renders buckets in the given emission order.
//
// Items are listed by ascending pos. Each bucket-typed item must already
// have been emitted; this re-checks the sequencer's order and reports an
// UnresolvedForwardReference error if it does not hold.
func RenderBuckets(order []ir.Bucket, names *NameTable) (string, error) {
	var b strings.Builder
	b.WriteString("# buckets\n")

	emitted := make(IDSet, len(order))
	for _, bucket := range order {
		hash, ok := ir.ParseHashAlg(bucket.Hash)
		if !ok {
			return "", newError(KindUnknownHash, StageRender, "bucket "+bucket.Name,
				"unknown hash algorithm %q", bucket.Hash)
		}

		items := slices.Clone(bucket.Items)
		slices.SortStableFunc(items, func(x, y ir.Item) int {
			return x.Pos - y.Pos
		})

		fmt.Fprintf(&b, "%s %s {\n", bucket.TypeName, bucket.Name)
		fmt.Fprintf(&b, "\tid %d\t\t# do not change unnecessarily\n", bucket.ID)
		fmt.Fprintf(&b, "\t# weight %s\n", bucket.Weight)
		fmt.Fprintf(&b, "\talg %s\n", bucket.Alg)
		fmt.Fprintf(&b, "\thash %d\t# %s\n", hash, bucket.Hash)
		for _, item := range items {
			name, ok := names.Lookup(item.ID)
			if !ok {
				return "", danglingItemError(StageRender, bucket, item.ID)
			}
			if names.BucketIDs().Has(item.ID) && !emitted.Has(item.ID) {
				return "", newError(KindForwardReference, StageRender, "bucket "+bucket.Name,
					"item %s is referenced before it is declared", name)
			}
			fmt.Fprintf(&b, "\titem %s weight %s\n", name, item.Weight)
		}
		b.WriteString("}\n")

		emitted[bucket.ID] = struct{}{}
	}

	b.WriteString("\n")
	return b.String(), nil
}

// RenderRules renders each rule as a named block with one line per step.
func RenderRules(rules []ir.Rule, names *NameTable) (string, error) {
	var b strings.Builder
	b.WriteString("# rules\n")

	for _, rule := range rules {
		ruleType, ok := ir.ParseRuleType(rule.Type)
		if !ok {
			return "", newError(KindUnknownRuleType, StageRender, "rule "+rule.Name,
				"unknown rule type %d", rule.Type)
		}

		fmt.Fprintf(&b, "rule %s {\n", rule.Name)
		fmt.Fprintf(&b, "\truleset %d\n", rule.Ruleset)
		fmt.Fprintf(&b, "\ttype %s\n", ruleType)
		fmt.Fprintf(&b, "\tmin_size %d\n", rule.MinSize)
		fmt.Fprintf(&b, "\tmax_size %d\n", rule.MaxSize)
		for i, step := range rule.Steps {
			line, err := formatStep(step, names)
			if err != nil {
				err.Entity = fmt.Sprintf("rule %s step %d", rule.Name, i)
				return "", err
			}
			fmt.Fprintf(&b, "\tstep %s\n", line)
		}
		b.WriteString("}\n")
	}

	b.WriteString("\n")
	return b.String(), nil
}

// formatStep renders a step with its opcode template. Only take resolves
// its item through the name table; num and type are passed through.
func formatStep(step ir.Step, names *NameTable) (string, *Error) {
	op, ok := ir.ParseStepOp(step.Op)
	if !ok {
		return "", newError(KindUnknownStepOpcode, StageRender, "", "unknown step opcode %q", step.Op)
	}

	switch op {
	case ir.OpNoop:
		return "noop", nil
	case ir.OpEmit:
		return "emit", nil
	case ir.OpTake:
		if step.Item == nil {
			return "", missingStepField(op, "item")
		}
		name, ok := names.Lookup(*step.Item)
		if !ok {
			return "", newError(KindDanglingReference, StageRender, "",
				"take item %d is neither a device nor a bucket", *step.Item)
		}
		return "take " + name, nil
	case ir.OpChooseFirstN, ir.OpChooseIndep, ir.OpChooseLeafFirstN, ir.OpChooseLeafIndep:
		if step.Num == nil {
			return "", missingStepField(op, "num")
		}
		if step.Type == nil {
			return "", missingStepField(op, "type")
		}
		return fmt.Sprintf("%s %s %d type %s", chooseVerb(op), chooseMode(op), *step.Num, *step.Type), nil
	case ir.OpSetChooseTries:
		if step.Num == nil {
			return "", missingStepField(op, "num")
		}
		return fmt.Sprintf("set choose tries %d", *step.Num), nil
	case ir.OpSetChooseLeafTries:
		if step.Num == nil {
			return "", missingStepField(op, "num")
		}
		return fmt.Sprintf("set chooseleaf tries %d", *step.Num), nil
	default:
		return "", newError(KindUnknownStepOpcode, StageRender, "", "unknown step opcode %q", step.Op)
	}
}

func chooseVerb(op ir.StepOp) string {
	if op == ir.OpChooseLeafFirstN || op == ir.OpChooseLeafIndep {
		return "chooseleaf"
	}
	return "choose"
}

func chooseMode(op ir.StepOp) string {
	if op == ir.OpChooseFirstN || op == ir.OpChooseLeafFirstN {
		return "firstn"
	}
	return "indep"
}

func missingStepField(op ir.StepOp, field string) *Error {
	return newError(KindMalformedInput, StageRender, "", "%s step requires %s", op, field)
}
