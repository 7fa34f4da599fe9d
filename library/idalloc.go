package library

// reservedBaseID is the highest id the allocator never hands out;
// principal ids start above it.
const reservedBaseID = 100

// IDAllocator hands out monotonically increasing principal ids. Ids are
// never reused or reassigned; restoring persisted principals bumps the
// counter past them. The registry owns one allocator per Library, so
// allocation is deterministic and testable rather than hidden global
// state.
type IDAllocator struct {
	next int
}

// NewIDAllocator creates an allocator whose first id is base+1.
func NewIDAllocator(base int) *IDAllocator {
	return &IDAllocator{next: base + 1}
}

func (a *IDAllocator) allocate() int {
	id := a.next
	a.next++
	return id
}

// ensureAbove guarantees future allocations exceed id.
func (a *IDAllocator) ensureAbove(id int) {
	if id >= a.next {
		a.next = id + 1
	}
}
