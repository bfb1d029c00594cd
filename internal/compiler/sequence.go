package compiler

import (
	"container/heap"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/crushtxt/internal/ir"
)

// Sequencer computes the order in which buckets are emitted so that no
// bucket is referenced before it is declared.
//
// The device and bucket id sets are explicit inputs; the sequencer keeps no
// other state between calls.
type Sequencer struct {
	buckets   []ir.Bucket
	deviceIDs IDSet
	bucketIDs IDSet
}

// NewSequencer creates a sequencer over the given buckets. Bucket ids must be
// unique (Resolve guarantees this).
func NewSequencer(buckets []ir.Bucket, deviceIDs, bucketIDs IDSet) *Sequencer {
	return &Sequencer{
		buckets:   buckets,
		deviceIDs: deviceIDs,
		bucketIDs: bucketIDs,
	}
}

// IsLeaf reports whether every item of b is a device. A bucket with no items
// is a leaf.
func (s *Sequencer) IsLeaf(b ir.Bucket) bool {
	for _, item := range b.Items {
		if !s.deviceIDs.Has(item.ID) {
			return false
		}
	}
	return true
}

// Order returns the buckets in emission order.
//
// The algorithm is Kahn's topological sort over the containment graph, where
// a contained bucket must precede its container. Among buckets that are
// ready at the same time, leaf buckets come before internal buckets and ties
// are broken by ascending id, so the result does not depend on input order.
//
// Errors:
//   - DanglingReference if an item id is neither a device nor a bucket
//   - UnresolvedForwardReference if the containment graph has a cycle; the
//     message carries the cycle path
func (s *Sequencer) Order() ([]ir.Bucket, error) {
	n := len(s.buckets)
	index := make(map[int64]int, n)
	for i, b := range s.buckets {
		index[b.ID] = i
	}

	indegree := make([]int, n)
	dependents := make([][]int, n)
	leaf := make([]bool, n)

	for i, b := range s.buckets {
		leaf[i] = true
		for _, item := range b.Items {
			switch {
			case s.deviceIDs.Has(item.ID):
				continue
			case s.bucketIDs.Has(item.ID):
				j, ok := index[item.ID]
				if !ok {
					return nil, danglingItemError(StageSequence, b, item.ID)
				}
				leaf[i] = false
				indegree[i]++
				dependents[j] = append(dependents[j], i)
			default:
				return nil, danglingItemError(StageSequence, b, item.ID)
			}
		}
	}

	ready := &readyQueue{buckets: s.buckets, leaf: leaf}
	for i := range s.buckets {
		if indegree[i] == 0 {
			ready.indices = append(ready.indices, i)
		}
	}
	heap.Init(ready)

	order := make([]ir.Bucket, 0, n)
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		order = append(order, s.buckets[i])
		for _, dep := range dependents[i] {
			indegree[dep]--
			if indegree[dep] == 0 {
				heap.Push(ready, dep)
			}
		}
	}

	if len(order) < n {
		return nil, s.cycleError(indegree)
	}

	slog.Debug("sequenced buckets", "count", len(order))

	return order, nil
}

// readyQueue is a min-heap of bucket indices: leaf buckets first, then
// ascending id.
type readyQueue struct {
	buckets []ir.Bucket
	leaf    []bool
	indices []int
}

func (q *readyQueue) Len() int { return len(q.indices) }

func (q *readyQueue) Less(a, b int) bool {
	i, j := q.indices[a], q.indices[b]
	if q.leaf[i] != q.leaf[j] {
		return q.leaf[i]
	}
	return q.buckets[i].ID < q.buckets[j].ID
}

func (q *readyQueue) Swap(a, b int) { q.indices[a], q.indices[b] = q.indices[b], q.indices[a] }

func (q *readyQueue) Push(x any) { q.indices = append(q.indices, x.(int)) }

func (q *readyQueue) Pop() any {
	old := q.indices
	x := old[len(old)-1]
	q.indices = old[:len(old)-1]
	return x
}

// cycleError builds the error for buckets left unscheduled by Order.
// Every unscheduled bucket either lies on a cycle or contains one that
// does, so at least one strongly connected component is a real cycle.
func (s *Sequencer) cycleError(indegree []int) error {
	graph := make(containmentGraph)
	var stuck []int64
	for i, b := range s.buckets {
		if indegree[i] == 0 {
			continue
		}
		stuck = append(stuck, b.ID)
		for _, item := range b.Items {
			if s.bucketIDs.Has(item.ID) {
				graph[b.ID] = append(graph[b.ID], item.ID)
			}
		}
	}
	slices.Sort(stuck)

	names := make(map[int64]string, len(s.buckets))
	for _, b := range s.buckets {
		names[b.ID] = b.Name
	}

	var path []int64
	for _, scc := range tarjanSCC(graph, stuck) {
		if len(scc) > 1 || graph.hasSelfLoop(scc[0]) {
			path = reconstructCyclePath(scc, graph)
			break
		}
	}
	if len(path) == 0 {
		// Unreachable for a consistent graph; report the stuck buckets.
		return newError(KindForwardReference, StageSequence, names[stuck[0]],
			"%d bucket(s) could not be ordered", len(stuck))
	}

	labels := make([]string, len(path))
	for i, id := range path {
		labels[i] = names[id]
	}
	return newError(KindForwardReference, StageSequence, labels[0],
		"bucket hierarchy contains a cycle: %s", strings.Join(labels, " -> "))
}

// containmentGraph maps a bucket id to the bucket ids it contains.
type containmentGraph map[int64][]int64

func (g containmentGraph) hasSelfLoop(id int64) bool {
	return slices.Contains(g[id], id)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in the given order so the result is deterministic.
func tarjanSCC(graph containmentGraph, nodes []int64) [][]int64 {
	var (
		index   = 0
		stack   []int64
		indices = make(map[int64]int)
		lowlink = make(map[int64]int)
		onStack = make(map[int64]bool)
		sccs    [][]int64
	)

	var strongConnect func(int64)
	strongConnect = func(v int64) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []int64
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// reconstructCyclePath returns the shortest cycle through the smallest id
// of an SCC, found by breadth-first search. The start appears at both ends.
func reconstructCyclePath(scc []int64, graph containmentGraph) []int64 {
	members := make(map[int64]bool, len(scc))
	for _, id := range scc {
		members[id] = true
	}

	start := slices.Min(scc)
	parent := make(map[int64]int64)
	seen := map[int64]bool{start: true}
	queue := []int64{start}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range graph[v] {
			if w == start {
				path := []int64{start}
				for u := v; u != start; u = parent[u] {
					path = append(path, u)
				}
				slices.Reverse(path[1:])
				return append(path, start)
			}
			if members[w] && !seen[w] {
				seen[w] = true
				parent[w] = v
				queue = append(queue, w)
			}
		}
	}
	return nil
}

func danglingItemError(stage Stage, b ir.Bucket, id int64) *Error {
	return &Error{
		Kind:    KindDanglingReference,
		Stage:   stage,
		Entity:  "bucket " + b.Name,
		Message: fmt.Sprintf("item %d is neither a device nor a bucket", id),
	}
}
