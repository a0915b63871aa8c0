package priority

// NotInHeap is the slot value of an element that is not heap resident.
const NotInHeap = -1

// Heap is a binary min-heap of element indices. The elements live with the
// owner, which also stores each element's heap position and hands it to the
// heap through the slot function. The heap never owns elements.
type Heap struct {
	items []int
	less  func(a, b int) bool // reports whether element a orders before b
	slot  func(i int) *int
}

// NewHeap creates an empty heap ordered by less.
func NewHeap(less func(a, b int) bool, slot func(i int) *int) *Heap {
	return &Heap{
		items: make([]int, 0, 8),
		less:  less,
		slot:  slot,
	}
}

// Len returns the number of elements in the heap.
func (h *Heap) Len() int {
	return len(h.items)
}

// Contains reports whether element i is in the heap.
func (h *Heap) Contains(i int) bool {
	return *h.slot(i) != NotInHeap
}

// Insert adds element i. Inserting a resident element is a no-op.
func (h *Heap) Insert(i int) {
	if h.Contains(i) {
		return
	}
	*h.slot(i) = len(h.items)
	h.items = append(h.items, i)
	h.up(len(h.items) - 1)
}

// Top returns the first element without removing it.
func (h *Heap) Top() (int, bool) {
	if len(h.items) == 0 {
		return 0, false
	}
	return h.items[0], true
}

// Update restores heap order after element i changed.
func (h *Heap) Update(i int) {
	pos := *h.slot(i)
	if pos == NotInHeap {
		return
	}
	if !h.up(pos) {
		h.down(pos)
	}
}

// Delete removes element i.
func (h *Heap) Delete(i int) {
	pos := *h.slot(i)
	if pos == NotInHeap {
		return
	}
	last := len(h.items) - 1
	if pos != last {
		h.swap(pos, last)
	}
	h.items = h.items[:last]
	*h.slot(i) = NotInHeap
	if pos < last {
		if !h.up(pos) {
			h.down(pos)
		}
	}
}

// Pop removes and returns the first element.
func (h *Heap) Pop() (int, bool) {
	i, ok := h.Top()
	if !ok {
		return 0, false
	}
	h.Delete(i)
	return i, true
}

// Reset empties the heap, marking every element as not resident.
func (h *Heap) Reset() {
	for _, i := range h.items {
		*h.slot(i) = NotInHeap
	}
	h.items = h.items[:0]
}

func (h *Heap) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	*h.slot(h.items[i]) = i
	*h.slot(h.items[j]) = j
}

func (h *Heap) lessAt(i, j int) bool {
	return h.less(h.items[i], h.items[j])
}

// up moves the element at position i towards the root and reports whether
// it moved.
func (h *Heap) up(i int) bool {
	moved := false
	for i > 0 {
		parent := (i - 1) / 2
		if !h.lessAt(i, parent) {
			break
		}
		h.swap(i, parent)
		i = parent
		moved = true
	}
	return moved
}

// down moves the element at position i towards the leaves.
func (h *Heap) down(i int) {
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2

		if left < len(h.items) && h.lessAt(left, smallest) {
			smallest = left
		}
		if right < len(h.items) && h.lessAt(right, smallest) {
			smallest = right
		}
		if smallest == i {
			return
		}
		h.swap(i, smallest)
		i = smallest
	}
}
