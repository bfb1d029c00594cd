package ir

// Document is a decoded crush map dump.
type Document struct {
	Tunables Tunables `json:"tunables"`
	Devices  []Device `json:"devices"`
	Types    []Type   `json:"types"`
	Buckets  []Bucket `json:"buckets"`
	Rules    []Rule   `json:"rules"`
}

// Device is a leaf storage unit (an OSD).
type Device struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Type maps a hierarchy level number to its name ("host", "rack", ...).
type Type struct {
	TypeID int64  `json:"type_id"`
	Name   string `json:"name"`
}

// Bucket is an internal node of the placement hierarchy.
type Bucket struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	TypeName string `json:"type_name"`
	Alg      string `json:"alg"`
	Hash     string `json:"hash"`
	Weight   Weight `json:"weight"`
	Items    []Item `json:"items"`
}

// Item is a weighted reference from a bucket to a device or another bucket.
type Item struct {
	ID     int64  `json:"id"`
	Weight Weight `json:"weight"`
	Pos    int    `json:"pos"`
}

// ItemIDs returns the ids referenced by the bucket, in declaration order.
func (b Bucket) ItemIDs() []int64 {
	ids := make([]int64, len(b.Items))
	for i, item := range b.Items {
		ids[i] = item.ID
	}
	return ids
}

// Rule is a placement rule: an ordered list of steps walking the hierarchy.
type Rule struct {
	Name    string `json:"rule_name"`
	Ruleset int64  `json:"ruleset"`
	Type    int64  `json:"type"`
	MinSize int64  `json:"min_size"`
	MaxSize int64  `json:"max_size"`
	Steps   []Step `json:"steps"`
}

// Step is a rule step as dumped. Which fields are present depends on Op;
// absent fields are nil.
type Step struct {
	Op   string  `json:"op"`
	Item *int64  `json:"item,omitempty"`
	Num  *int64  `json:"num,omitempty"`
	Type *string `json:"type,omitempty"`
}
