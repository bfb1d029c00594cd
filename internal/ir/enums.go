package ir

// RuleType is the numeric rule type of a dumped rule.
type RuleType int64

const (
	RuleReplicated RuleType = 1
	RuleRAID4      RuleType = 2
	RuleErasure    RuleType = 3
)

var ruleTypeNames = map[RuleType]string{
	RuleReplicated: "replicated",
	RuleRAID4:      "raid4",
	RuleErasure:    "erasure",
}

// ParseRuleType returns the rule type for a dumped value.
// The second result is false for values outside the known set.
func ParseRuleType(v int64) (RuleType, bool) {
	rt := RuleType(v)
	_, ok := ruleTypeNames[rt]
	return rt, ok
}

// String returns the text-map keyword for the rule type.
func (rt RuleType) String() string {
	if name, ok := ruleTypeNames[rt]; ok {
		return name
	}
	return "unknown"
}

// StepOp is a rule step opcode.
type StepOp int

const (
	OpNoop StepOp = iota
	OpTake
	OpEmit
	OpChooseFirstN
	OpChooseIndep
	OpChooseLeafFirstN
	OpChooseLeafIndep
	OpSetChooseTries
	OpSetChooseLeafTries
)

var stepOpNames = []string{
	OpNoop:               "noop",
	OpTake:               "take",
	OpEmit:               "emit",
	OpChooseFirstN:       "choose_firstn",
	OpChooseIndep:        "choose_indep",
	OpChooseLeafFirstN:   "chooseleaf_firstn",
	OpChooseLeafIndep:    "chooseleaf_indep",
	OpSetChooseTries:     "set_choose_tries",
	OpSetChooseLeafTries: "set_chooseleaf_tries",
}

// ParseStepOp maps a dumped opcode name to a StepOp.
// The second result is false for opcodes outside the known set.
func ParseStepOp(name string) (StepOp, bool) {
	for op, n := range stepOpNames {
		if n == name {
			return StepOp(op), true
		}
	}
	return 0, false
}

// String returns the dumped opcode name.
func (op StepOp) String() string {
	if int(op) >= 0 && int(op) < len(stepOpNames) {
		return stepOpNames[op]
	}
	return "unknown"
}

// HashAlg is a bucket hash function.
type HashAlg int

const (
	HashRJenkins1 HashAlg = 0
)

var hashAlgByName = map[string]HashAlg{
	"rjenkins1": HashRJenkins1,
}

// ParseHashAlg maps a dumped hash name to its numeric code.
// The second result is false for unknown hash names.
func ParseHashAlg(name string) (HashAlg, bool) {
	h, ok := hashAlgByName[name]
	return h, ok
}
