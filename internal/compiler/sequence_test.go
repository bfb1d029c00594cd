package compiler

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/crushtxt/internal/ir"
)

func order(t *testing.T, doc *ir.Document) ([]ir.Bucket, error) {
	t.Helper()
	table := names(t, doc)
	return NewSequencer(doc.Buckets, table.DeviceIDs(), table.BucketIDs()).Order()
}

func TestOrderNestedHierarchy(t *testing.T) {
	doc := &ir.Document{
		Devices: devices(0, 1),
		Buckets: []ir.Bucket{
			bucket(-1, "root", item(-3, 65536, 0)),
			bucket(-3, "rack", item(-2, 65536, 0)),
			bucket(-2, "host", item(0, 32768, 0), item(1, 32768, 1)),
		},
	}

	got, err := order(t, doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"host", "rack", "root"}, bucketNames(got))
}

func TestOrderLeafBeforeInternal(t *testing.T) {
	doc := &ir.Document{
		Devices: devices(0, 1),
		Buckets: []ir.Bucket{
			// Internal bucket with the smallest id, unrelated to "leaf".
			bucket(-10, "internal", item(-2, 65536, 0)),
			bucket(-2, "nested", item(0, 65536, 0)),
			bucket(-1, "leaf", item(1, 65536, 0)),
		},
	}

	got, err := order(t, doc)
	require.NoError(t, err)
	emitted := bucketNames(got)
	assert.Equal(t, []string{"nested", "leaf", "internal"}, emitted)
	assert.Less(t, indexOf(emitted, "leaf"), indexOf(emitted, "internal"))
}

func TestOrderTieBreakByAscendingID(t *testing.T) {
	base := []ir.Bucket{
		bucket(-4, "host4", item(3, 65536, 0)),
		bucket(-1, "host1", item(0, 65536, 0)),
		bucket(-3, "host3", item(2, 65536, 0)),
		bucket(-2, "host2", item(1, 65536, 0)),
	}
	want := []string{"host4", "host3", "host2", "host1"}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		perm := make([]ir.Bucket, len(base))
		for j, k := range rng.Perm(len(base)) {
			perm[j] = base[k]
		}
		doc := &ir.Document{Devices: devices(0, 1, 2, 3), Buckets: perm}

		got, err := order(t, doc)
		require.NoError(t, err)
		assert.Equal(t, want, bucketNames(got), "permutation %d", i)
	}
}

func TestOrderEmptyBucketIsLeaf(t *testing.T) {
	doc := &ir.Document{
		Devices: devices(0),
		Buckets: []ir.Bucket{
			bucket(-5, "parent", item(-1, 0, 0)),
			bucket(-1, "empty"),
		},
	}
	table := names(t, doc)
	seq := NewSequencer(doc.Buckets, table.DeviceIDs(), table.BucketIDs())

	assert.True(t, seq.IsLeaf(doc.Buckets[1]))
	assert.False(t, seq.IsLeaf(doc.Buckets[0]))

	got, err := seq.Order()
	require.NoError(t, err)
	assert.Equal(t, []string{"empty", "parent"}, bucketNames(got))
}

func TestOrderNoBuckets(t *testing.T) {
	got, err := NewSequencer(nil, IDSet{}, IDSet{}).Order()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOrderDanglingItem(t *testing.T) {
	doc := &ir.Document{
		Devices: devices(0),
		Buckets: []ir.Bucket{bucket(-1, "host1", item(0, 65536, 0), item(42, 65536, 1))},
	}

	_, err := order(t, doc)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindDanglingReference), "got %v", err)
	assert.Contains(t, err.Error(), "host1")
	assert.Contains(t, err.Error(), "42")
}

func TestOrderDetectsCycles(t *testing.T) {
	tests := []struct {
		name    string
		buckets []ir.Bucket
		entity  string
		path    string
	}{
		{
			name:    "self reference",
			buckets: []ir.Bucket{bucket(-1, "loop", item(-1, 0, 0))},
			entity:  "loop",
			path:    "loop -> loop",
		},
		{
			name: "direct pair",
			buckets: []ir.Bucket{
				bucket(-1, "a", item(-2, 0, 0)),
				bucket(-2, "b", item(-1, 0, 0)),
			},
			entity: "b",
			path:   "b -> a -> b",
		},
		{
			name: "longer cycle with acyclic neighbours",
			buckets: []ir.Bucket{
				bucket(-1, "rack1", item(-2, 0, 0)),
				bucket(-2, "host1", item(0, 65536, 0), item(-3, 0, 1)),
				bucket(-3, "row1", item(-1, 0, 0)),
				bucket(-4, "fine", item(0, 0, 0)),
				bucket(-5, "root", item(-4, 0, 0), item(-1, 0, 1)),
			},
			entity: "row1",
			path:   "row1 -> rack1 -> host1 -> row1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &ir.Document{Devices: devices(0), Buckets: tt.buckets}

			_, err := order(t, doc)
			require.Error(t, err)
			assert.True(t, IsKind(err, KindForwardReference), "got %v", err)

			var ce *Error
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, StageSequence, ce.Stage)
			assert.Equal(t, tt.entity, ce.Entity)
			assert.Contains(t, ce.Message, tt.path)
		})
	}
}

func TestOrderRandomDAGHasNoForwardReferences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 25; round++ {
		doc := randomHierarchy(rng, 40, 12)

		got, err := order(t, doc)
		require.NoError(t, err)
		require.Len(t, got, len(doc.Buckets))

		pos := make(map[int64]int, len(got))
		for i, b := range got {
			pos[b.ID] = i
		}
		for _, b := range got {
			for _, it := range b.Items {
				if it.ID < 0 {
					assert.Less(t, pos[it.ID], pos[b.ID],
						"round %d: %s must follow its item %d", round, b.Name, it.ID)
				}
			}
		}
	}
}

// randomHierarchy builds an acyclic hierarchy: bucket -(i+1) may only
// contain devices or buckets with a larger index, so there are no cycles.
func randomHierarchy(rng *rand.Rand, nBuckets, nDevices int) *ir.Document {
	ids := make([]int64, nDevices)
	for i := range ids {
		ids[i] = int64(i)
	}
	doc := &ir.Document{Devices: devices(ids...)}

	for i := 0; i < nBuckets; i++ {
		id := -int64(i + 1)
		var items []ir.Item
		for k := 0; k < 1+rng.Intn(4); k++ {
			if j := i + 1 + rng.Intn(nBuckets); j < nBuckets && rng.Intn(2) == 0 {
				items = append(items, item(-int64(j+1), 65536, k))
			} else {
				items = append(items, item(int64(rng.Intn(nDevices)), 65536, k))
			}
		}
		doc.Buckets = append(doc.Buckets, bucket(id, "b"+itoa(-id), items...))
	}

	rng.Shuffle(len(doc.Buckets), func(i, j int) {
		doc.Buckets[i], doc.Buckets[j] = doc.Buckets[j], doc.Buckets[i]
	})
	return doc
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
