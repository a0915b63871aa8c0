// Package priority implements the binary heap the merger selects its next
// source with.
//
// The heap stores small integer indices rather than the elements
// themselves. The owner of the elements keeps each element's heap position
// in a slot it exposes through a callback, which gives O(log n) Update and
// Delete of arbitrary elements without the heap holding pointers into the
// owner's data:
//
//	type source struct {
//	    head int
//	    slot int
//	}
//	sources := []source{{head: 5, slot: priority.NotInHeap}, {head: 2, slot: priority.NotInHeap}}
//
//	h := priority.NewHeap(
//	    func(a, b int) bool { return sources[a].head < sources[b].head },
//	    func(i int) *int { return &sources[i].slot },
//	)
//	h.Insert(0)
//	h.Insert(1)
//
//	top, _ := h.Top() // 1
//	sources[top].head = 9
//	h.Update(top)     // source 0 is now on top
//
// Elements that compare equal come out in heap order, which is not the
// insertion order.
package priority
