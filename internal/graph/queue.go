package graph

import "container/heap"

type queueItem struct {
	node int
	g    float64 // accumulated travel time, hours
	f    float64 // g + heuristic
	seq  int     // insertion order, breaks ties deterministically
}

type priorityQueue struct {
	items []*queueItem
	index map[int]int // node -> position in items
	seq   int
}

func newPriorityQueue() *priorityQueue {
	return &priorityQueue{index: make(map[int]int)}
}

func (pq priorityQueue) Len() int { return len(pq.items) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq.items[i].f != pq.items[j].f {
		return pq.items[i].f < pq.items[j].f
	}
	return pq.items[i].seq < pq.items[j].seq
}

func (pq priorityQueue) Swap(i, j int) {
	pq.index[pq.items[i].node] = j
	pq.index[pq.items[j].node] = i
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
}

func (pq *priorityQueue) Push(x interface{}) {
	item := x.(*queueItem)
	pq.items = append(pq.items, item)
	pq.index[item.node] = len(pq.items) - 1
}

func (pq *priorityQueue) Pop() interface{} {
	n := len(pq.items)
	item := pq.items[n-1]
	delete(pq.index, item.node)
	pq.items = pq.items[:n-1]
	return item
}

// push inserts a node, stamping it with the next sequence number
func (pq *priorityQueue) push(node int, g, f float64) {
	pq.seq++
	heap.Push(pq, &queueItem{node: node, g: g, f: f, seq: pq.seq})
}

// update lowers the priority of a queued node, keeping its original
// sequence stamp
func (pq *priorityQueue) update(node int, g, f float64) bool {
	i, ok := pq.index[node]
	if !ok {
		return false
	}
	pq.items[i].g = g
	pq.items[i].f = f
	heap.Fix(pq, i)
	return true
}
