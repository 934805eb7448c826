package kernel

// timerList is the single process-wide doubly-linked list of TCBs with
// a finite wakeup deadline, sorted ascending by deadline (spec.md §3,
// §4.3). It threads TCB.tlink, a field distinct from the ready/wait
// link so a task can be on a wait queue and the timer list at once.
// Insertion is O(n); spec.md accepts this for implementation
// simplicity.
type timerList struct {
	head *TCB
}

// schedule inserts t in ascending-deadline order. t.deadline must
// already be set. No-op if t is already on the timer list.
func (l *timerList) schedule(t *TCB) {
	if t.onTimer {
		return
	}
	t.onTimer = true

	if l.head == nil || Before(t.deadline, l.head.deadline) {
		t.tlink.next = l.head
		t.tlink.prev = nil
		if l.head != nil {
			l.head.tlink.prev = t
		}
		l.head = t
		return
	}

	cur := l.head
	for cur.tlink.next != nil && !Before(t.deadline, cur.tlink.next.deadline) {
		cur = cur.tlink.next
	}
	t.tlink.next = cur.tlink.next
	t.tlink.prev = cur
	if cur.tlink.next != nil {
		cur.tlink.next.tlink.prev = t
	}
	cur.tlink.next = t
}

// cancel unlinks t from the timer list. No-op if t is not on it.
func (l *timerList) cancel(t *TCB) {
	if !t.onTimer {
		return
	}
	if t.tlink.prev != nil {
		t.tlink.prev.tlink.next = t.tlink.next
	} else {
		l.head = t.tlink.next
	}
	if t.tlink.next != nil {
		t.tlink.next.tlink.prev = t.tlink.prev
	}
	t.tlink.prev, t.tlink.next = nil, nil
	t.onTimer = false
}
