package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainDocument is the domain prefix for document digests.
// The version suffix tracks IRVersion.
const DomainDocument = "crushtxt/document/v" + IRVersion

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DocumentDigest computes the content-addressed identity of a document.
// Two dumps that differ only in whitespace, key order or Unicode
// normalization of names produce the same digest.
func DocumentDigest(doc *Document) (string, error) {
	canonical, err := MarshalCanonical(doc.CanonicalMap())
	if err != nil {
		return "", fmt.Errorf("DocumentDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainDocument, canonical), nil
}

// CanonicalMap converts the document into plain values accepted by
// MarshalCanonical. Absent step fields are omitted.
func (doc *Document) CanonicalMap() map[string]any {
	tunables := make(map[string]any, len(doc.Tunables.Values)+len(doc.Tunables.Notes))
	for name, v := range doc.Tunables.Values {
		tunables[name] = v
	}
	for name, s := range doc.Tunables.Notes {
		tunables[name] = s
	}

	devices := make([]any, len(doc.Devices))
	for i, d := range doc.Devices {
		devices[i] = map[string]any{"id": d.ID, "name": d.Name}
	}

	types := make([]any, len(doc.Types))
	for i, t := range doc.Types {
		types[i] = map[string]any{"type_id": t.TypeID, "name": t.Name}
	}

	buckets := make([]any, len(doc.Buckets))
	for i, b := range doc.Buckets {
		items := make([]any, len(b.Items))
		for j, item := range b.Items {
			items[j] = map[string]any{
				"id":     item.ID,
				"weight": int64(item.Weight),
				"pos":    item.Pos,
			}
		}
		buckets[i] = map[string]any{
			"id":        b.ID,
			"name":      b.Name,
			"type_name": b.TypeName,
			"alg":       b.Alg,
			"hash":      b.Hash,
			"weight":    int64(b.Weight),
			"items":     items,
		}
	}

	rules := make([]any, len(doc.Rules))
	for i, r := range doc.Rules {
		steps := make([]any, len(r.Steps))
		for j, s := range r.Steps {
			step := map[string]any{"op": s.Op}
			if s.Item != nil {
				step["item"] = *s.Item
			}
			if s.Num != nil {
				step["num"] = *s.Num
			}
			if s.Type != nil {
				step["type"] = *s.Type
			}
			steps[j] = step
		}
		rules[i] = map[string]any{
			"rule_name": r.Name,
			"ruleset":   r.Ruleset,
			"type":      r.Type,
			"min_size":  r.MinSize,
			"max_size":  r.MaxSize,
			"steps":     steps,
		}
	}

	return map[string]any{
		"tunables": tunables,
		"devices":  devices,
		"types":    types,
		"buckets":  buckets,
		"rules":    rules,
	}
}
