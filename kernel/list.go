package kernel

// link is the intrusive doubly-linked-list node embedded in a TCB.
// spec.md §9: a TCB carries one such field per list it can
// simultaneously belong to. rlink threads the ready list or a single
// wait queue (mutually exclusive); tlink threads the timer list.
type link struct {
	prev, next *TCB
}

// priorityList is a circular doubly-linked list of TCBs ordered
// ascending by priority, ties broken by insertion order (FIFO within a
// priority band). It backs both the ready list (ready.go) and every
// wait queue (wait.go) — spec.md gives them identical ordering rules.
// It operates on a TCB's rlink field; a TCB may be threaded into at
// most one priorityList at a time.
type priorityList struct {
	head *TCB
	n    int
}

func (l *priorityList) empty() bool { return l.head == nil }
func (l *priorityList) len() int    { return l.n }

// insert places t behind all tasks of strictly-lower-or-equal priority
// value (i.e. equal or higher scheduling priority, since smaller value
// wins), giving FIFO order within a priority band. A task re-inserted
// after yielding lands at the tail of its band, which is round-robin.
func (l *priorityList) insert(t *TCB) {
	if l.head == nil {
		t.rlink.prev, t.rlink.next = t, t
		l.head = t
		l.n++
		return
	}

	// Find the first node whose priority is strictly greater than t's;
	// insert immediately before it. If none, insert at the tail (wrap
	// to before head).
	cur := l.head
	for i := 0; i < l.n; i++ {
		if cur.priority > t.priority {
			insertBefore(cur, t)
			if cur == l.head {
				l.head = t
			}
			l.n++
			return
		}
		cur = cur.rlink.next
	}
	// t belongs at the very end.
	insertBefore(l.head, t)
	l.n++
}

// insertBefore splices t into the ring immediately before at.
func insertBefore(at, t *TCB) {
	p := at.rlink.prev
	t.rlink.prev = p
	t.rlink.next = at
	p.rlink.next = t
	at.rlink.prev = t
}

// remove unlinks t. t must currently be a member of l.
func (l *priorityList) remove(t *TCB) {
	if t.rlink.next == t {
		l.head = nil
	} else {
		t.rlink.prev.rlink.next = t.rlink.next
		t.rlink.next.rlink.prev = t.rlink.prev
		if l.head == t {
			l.head = t.rlink.next
		}
	}
	t.rlink.prev, t.rlink.next = nil, nil
	l.n--
}

// reinsert re-sorts t after its priority changed.
func (l *priorityList) reinsert(t *TCB) {
	l.remove(t)
	l.insert(t)
}

// each calls fn for every member, head first, in list order. fn must
// not mutate the list.
func (l *priorityList) each(fn func(*TCB)) {
	if l.head == nil {
		return
	}
	cur := l.head
	for i := 0; i < l.n; i++ {
		next := cur.rlink.next
		fn(cur)
		cur = next
	}
}
