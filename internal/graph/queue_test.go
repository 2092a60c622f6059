package graph

import (
	"container/heap"
	"testing"
)

func TestPriorityQueueOrdersByF(t *testing.T) {
	pq := newPriorityQueue()
	heap.Init(pq)

	pq.push(1, 0, 3.0)
	pq.push(2, 0, 1.0)
	pq.push(3, 0, 2.0)

	want := []int{2, 3, 1}
	for _, node := range want {
		item := heap.Pop(pq).(*queueItem)
		if item.node != node {
			t.Fatalf("popped %d, want %d", item.node, node)
		}
	}
}

func TestPriorityQueueBreaksTiesByInsertionOrder(t *testing.T) {
	pq := newPriorityQueue()
	heap.Init(pq)

	for node := 10; node < 20; node++ {
		pq.push(node, 0, 5.0)
	}

	for node := 10; node < 20; node++ {
		item := heap.Pop(pq).(*queueItem)
		if item.node != node {
			t.Fatalf("tie-break broken: popped %d, want %d", item.node, node)
		}
	}
}

func TestPriorityQueueUpdateKeepsInsertionSequence(t *testing.T) {
	pq := newPriorityQueue()
	heap.Init(pq)

	pq.push(1, 0, 10.0)
	pq.push(2, 0, 10.0)

	// Lowering node 1's priority to the same value as node 2 must keep
	// its earlier insertion rank
	if !pq.update(1, 0, 10.0) {
		t.Fatal("update should find the queued node")
	}
	if pq.update(99, 0, 1.0) {
		t.Fatal("update must report unknown nodes")
	}

	first := heap.Pop(pq).(*queueItem)
	if first.node != 1 {
		t.Errorf("popped %d, want 1", first.node)
	}
}
