package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// order collects the list's current membership in traversal order.
func order(l *priorityList) []*TCB {
	var out []*TCB
	l.each(func(t *TCB) { out = append(out, t) })
	return out
}

func TestPriorityListFIFOWithinBand(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(t, "n")
		prio := rapid.IntRange(0, 3).Draw(t, "prio") // everyone shares one band

		var l priorityList
		var tasks []*TCB
		for i := 0; i < n; i++ {
			tc := &TCB{priority: prio}
			tasks = append(tasks, tc)
			l.insert(tc)
		}

		assert.Equal(t, tasks, order(&l), "equal-priority tasks must come out in insertion order")
	})
}

func TestPriorityListOrdersAscending(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		prios := rapid.SliceOfN(rapid.IntRange(0, 50), 1, 30).Draw(t, "prios")

		var l priorityList
		for _, p := range prios {
			l.insert(&TCB{priority: p})
		}

		got := order(&l)
		for i := 1; i < len(got); i++ {
			assert.LessOrEqual(t, got[i-1].priority, got[i].priority, "list must be sorted ascending by priority")
		}
		assert.Equal(t, len(prios), l.len())
	})
}

func TestPriorityListRemoveThenReinsertPreservesMembership(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 15).Draw(t, "n")
		var l priorityList
		var tasks []*TCB
		for i := 0; i < n; i++ {
			tc := &TCB{priority: i}
			tasks = append(tasks, tc)
			l.insert(tc)
		}

		victim := tasks[rapid.IntRange(0, n-1).Draw(t, "victim")]
		l.remove(victim)
		assert.Equal(t, n-1, l.len())

		l.insert(victim)
		assert.Equal(t, n, l.len())
		assert.Equal(t, tasks, order(&l), "reinserted task must be back among the members, in priority order")
	})
}
