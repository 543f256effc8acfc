package datastructure

import (
	"errors"

	"golang.org/x/exp/constraints"
)

type PriorityQueueNode[T constraints.Ordered] struct {
	Rank float64
	Item T
}

// MinHeap is a binary min-heap keyed by Rank with DecreaseKey support.
// Ties on Rank are broken by the smaller Item, which keeps extraction order
// deterministic for equal-cost queue entries.
type MinHeap[T constraints.Ordered] struct {
	heap    []PriorityQueueNode[T]
	indexOf map[T]int
}

func NewMinHeap[T constraints.Ordered]() *MinHeap[T] {
	return &MinHeap[T]{
		heap:    make([]PriorityQueueNode[T], 0),
		indexOf: make(map[T]int),
	}
}

func (pq *MinHeap[T]) Size() int {
	return len(pq.heap)
}

func (pq *MinHeap[T]) less(i, j int) bool {
	if pq.heap[i].Rank != pq.heap[j].Rank {
		return pq.heap[i].Rank < pq.heap[j].Rank
	}
	return pq.heap[i].Item < pq.heap[j].Item
}

func (pq *MinHeap[T]) swap(i, j int) {
	pq.heap[i], pq.heap[j] = pq.heap[j], pq.heap[i]
	pq.indexOf[pq.heap[i].Item] = i
	pq.indexOf[pq.heap[j].Item] = j
}

func (pq *MinHeap[T]) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !pq.less(i, parent) {
			break
		}
		pq.swap(i, parent)
		i = parent
	}
}

func (pq *MinHeap[T]) down(i int) {
	n := len(pq.heap)
	for {
		smallest := i
		left, right := 2*i+1, 2*i+2
		if left < n && pq.less(left, smallest) {
			smallest = left
		}
		if right < n && pq.less(right, smallest) {
			smallest = right
		}
		if smallest == i {
			return
		}
		pq.swap(i, smallest)
		i = smallest
	}
}

func (pq *MinHeap[T]) Insert(node PriorityQueueNode[T]) {
	pq.heap = append(pq.heap, node)
	pq.indexOf[node.Item] = len(pq.heap) - 1
	pq.up(len(pq.heap) - 1)
}

func (pq *MinHeap[T]) GetMin() (PriorityQueueNode[T], error) {
	if len(pq.heap) == 0 {
		return PriorityQueueNode[T]{}, errors.New("priority queue is empty")
	}
	return pq.heap[0], nil
}

func (pq *MinHeap[T]) ExtractMin() (PriorityQueueNode[T], error) {
	if len(pq.heap) == 0 {
		return PriorityQueueNode[T]{}, errors.New("priority queue is empty")
	}
	min := pq.heap[0]
	last := len(pq.heap) - 1
	pq.swap(0, last)
	pq.heap = pq.heap[:last]
	delete(pq.indexOf, min.Item)
	if last > 0 {
		pq.down(0)
	}
	return min, nil
}

// DecreaseKey lowers the rank of an item already in the queue. Items not in
// the queue are inserted, which lets relax loops treat both cases uniformly.
func (pq *MinHeap[T]) DecreaseKey(node PriorityQueueNode[T]) error {
	i, ok := pq.indexOf[node.Item]
	if !ok {
		pq.Insert(node)
		return nil
	}
	if node.Rank > pq.heap[i].Rank {
		return errors.New("new rank is greater than current rank")
	}
	pq.heap[i].Rank = node.Rank
	pq.up(i)
	return nil
}
