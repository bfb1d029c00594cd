package compiler

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/roach88/crushtxt/internal/ir"
)

// IDSet is a set of item ids.
type IDSet map[int64]struct{}

// Has reports whether id is in the set.
func (s IDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// NameTable maps every device and bucket id to its name.
// It is built once by Resolve and only read afterward.
type NameTable struct {
	names     map[int64]string
	deviceIDs IDSet
	bucketIDs IDSet
}

// Lookup returns the name for an id.
func (t *NameTable) Lookup(id int64) (string, bool) {
	name, ok := t.names[id]
	return name, ok
}

// Len returns the number of named items.
func (t *NameTable) Len() int {
	return len(t.names)
}

// DeviceIDs returns the set of device ids.
func (t *NameTable) DeviceIDs() IDSet {
	return t.deviceIDs
}

// BucketIDs returns the set of bucket ids.
func (t *NameTable) BucketIDs() IDSet {
	return t.bucketIDs
}

// Resolve builds the name table from the union of devices and buckets.
//
// Device and bucket ids share one namespace; any collision (device/device,
// bucket/bucket or device/bucket) is a DuplicateID error naming both
// entities.
func Resolve(doc *ir.Document) (*NameTable, error) {
	t := &NameTable{
		names:     make(map[int64]string, len(doc.Devices)+len(doc.Buckets)),
		deviceIDs: make(IDSet, len(doc.Devices)),
		bucketIDs: make(IDSet, len(doc.Buckets)),
	}

	owner := make(map[int64]string, len(doc.Devices)+len(doc.Buckets))

	for _, d := range doc.Devices {
		if prev, ok := owner[d.ID]; ok {
			return nil, duplicateIDError(d.ID, prev, "device "+d.Name)
		}
		owner[d.ID] = "device " + d.Name
		t.names[d.ID] = d.Name
		t.deviceIDs[d.ID] = struct{}{}
	}

	for _, b := range doc.Buckets {
		if prev, ok := owner[b.ID]; ok {
			return nil, duplicateIDError(b.ID, prev, "bucket "+b.Name)
		}
		owner[b.ID] = "bucket " + b.Name
		t.names[b.ID] = b.Name
		t.bucketIDs[b.ID] = struct{}{}
	}

	slog.Debug("resolved names", "devices", len(t.deviceIDs), "buckets", len(t.bucketIDs))

	return t, nil
}

func duplicateIDError(id int64, first, second string) *Error {
	return &Error{
		Kind:    KindDuplicateID,
		Stage:   StageResolve,
		Entity:  "id " + strconv.FormatInt(id, 10),
		Message: fmt.Sprintf("%s collides with %s", second, first),
	}
}
