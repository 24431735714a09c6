package astar

import "container/heap"

// openEntry is one heap slot. A node may own several entries; only the one
// whose f matches the node's current F is live.
type openEntry struct {
	f    float64
	seq  uint64 // insertion order, breaks f ties first-in first-out
	node int
}

// openSet implements heap.Interface for the A* frontier.
type openSet []openEntry

func (q openSet) Len() int { return len(q) }

func (q openSet) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}

func (q openSet) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
}

func (q *openSet) Push(x interface{}) {
	*q = append(*q, x.(openEntry))
}

func (q *openSet) Pop() interface{} {
	old := *q
	n := len(old)
	entry := old[n-1]
	*q = old[0 : n-1]
	return entry
}

func (q *openSet) push(e openEntry) {
	heap.Push(q, e)
}

func (q *openSet) pop() openEntry {
	return heap.Pop(q).(openEntry)
}

// reset empties the set and keeps its capacity.
func (q *openSet) reset() {
	*q = (*q)[:0]
}
