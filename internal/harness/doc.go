// Package harness runs conversion scenarios described in YAML.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	dump: ../../../../testdata/dumps/minimal.json   # relative to the scenario file
//	input: |                                        # or an inline dump
//	  {"tunables": {}, ...}
//	assertions:
//	  - type: output_contains
//	    lines: ["device 0 osd.0"]
//	  - type: output_order
//	    lines: ["host host1 {", "rule replicated_rule {"]
//	  - type: bucket_order
//	    buckets: [host1]
//	  - type: forward_references
//	  - type: error_kind
//	    kind: DANGLING_REFERENCE
//
// Exactly one of dump or input must be set. A scenario with an error_kind
// assertion expects the conversion to fail; every other assertion type
// expects it to succeed.
//
// # Assertion Types
//
//   - output_contains: Every listed line appears in the output
//   - output_order: The listed lines appear in the output in this order
//   - bucket_order: Buckets are emitted exactly in this order
//   - forward_references: No bucket item names a bucket declared later
//   - error_kind: The conversion fails with this error kind
//
// Snapshots of passing scenarios are compared against
// testdata/golden/<name>.golden with goldie.
package harness
