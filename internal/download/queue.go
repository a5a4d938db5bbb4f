package download

// taskHeap orders pending handles by priority (higher first), then by
// submission sequence (FIFO).
type taskHeap []*Handle

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].task.Priority != h[j].task.Priority {
		return h[i].task.Priority > h[j].task.Priority
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	hd := x.(*Handle)
	hd.index = len(*h)
	*h = append(*h, hd)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	hd := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return hd
}
