// Package ir provides the in-memory representation of a crush map dump.
//
// This package contains type definitions and value helpers only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Weights stay fixed-point integers (scale 1/65536) until rendered
//   - JSON tags match the keys emitted by `ceph osd crush dump`
//   - Values are built once by the loader and never mutated afterward
package ir
