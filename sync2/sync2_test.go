package sync2

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kernelsim/statego/kernel"
)

func run(k *kernel.Kernel, tasks ...*kernel.TCB) {
	for _, t := range tasks {
		t.Start()
	}
	go k.Start()
	for _, t := range tasks {
		t.Wait()
	}
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	for i := 0; i < 10000 && !cond(); i++ {
		time.Sleep(100 * time.Microsecond)
	}
	require.True(t, cond(), "condition never became true")
}

func TestSemaphoreBlocksUntilSignaled(t *testing.T) {
	k := kernel.New()
	sem := NewSemaphore(k, 0)

	var got kernel.Event
	waiter := k.Spawn("waiter", func(c kernel.Context) {
		got = sem.Wait(c, kernel.Infinite)
	}, nil, 1)
	signaler := k.Spawn("signaler", func(c kernel.Context) {
		sem.Signal()
	}, nil, 2)

	run(k, waiter, signaler)

	assert.Equal(t, kernel.Event(0), got)
	assert.Equal(t, 0, sem.Count())
}

func TestSemaphoreTryWait(t *testing.T) {
	k := kernel.New()
	sem := NewSemaphore(k, 1)

	assert.True(t, sem.TryWait())
	assert.False(t, sem.TryWait())
}

func TestMutexMutualExclusion(t *testing.T) {
	k := kernel.New()
	mu := NewMutex(k)
	release := make(chan struct{})

	var order []string
	low := k.Spawn("low", func(c kernel.Context) {
		ev := mu.Lock(c, kernel.Infinite)
		assert.Equal(t, kernel.Event(0), ev)
		order = append(order, "low-locked")
		<-release
		mu.Unlock(c.Self())
	}, nil, 5)

	high := k.Spawn("high", func(c kernel.Context) {
		mu.Lock(c, kernel.Infinite)
		order = append(order, "high-locked")
		mu.Unlock(c.Self())
	}, nil, 1)

	// low is the only ready task besides idle, so it runs first and
	// takes the lock before high is even introduced.
	low.Start()
	go k.Start()
	waitUntil(t, func() bool { return mu.Holder() == low })

	high.Start()
	close(release)
	low.Wait()
	high.Wait()

	assert.Equal(t, []string{"low-locked", "high-locked"}, order)
}

func TestMutexPriorityInheritance(t *testing.T) {
	k := kernel.New()
	mu := NewMutex(k)
	release := make(chan struct{})

	holder := k.Spawn("holder", func(c kernel.Context) {
		<-release
		mu.Unlock(c.Self())
	}, nil, 10)
	require.True(t, mu.TryLock(holder))
	holder.Start()

	waiter := k.Spawn("waiter", func(c kernel.Context) {
		mu.Lock(c, kernel.Infinite)
	}, nil, 1)
	waiter.Start()

	go k.Start()

	waitUntil(t, func() bool { return holder.Priority() == 1 })
	assert.Equal(t, 10, holder.BasePriority())

	close(release)
	holder.Wait()
	waiter.Wait()
	assert.Equal(t, 10, holder.Priority(), "priority restored after unlock")
}

func TestEventManualReset(t *testing.T) {
	k := kernel.New()
	ev := NewEvent(k, false)

	var results [2]kernel.Event
	w1 := k.Spawn("w1", func(c kernel.Context) { results[0] = ev.Wait(c, kernel.Infinite) }, nil, 1)
	w2 := k.Spawn("w2", func(c kernel.Context) { results[1] = ev.Wait(c, kernel.Infinite) }, nil, 2)

	w1.Start()
	w2.Start()
	go k.Start()

	waitUntil(t, func() bool {
		return w1.State() == kernel.StateBlocked && w2.State() == kernel.StateBlocked
	})
	ev.Set()
	w1.Wait()
	w2.Wait()

	assert.Equal(t, kernel.Event(0), results[0])
	assert.Equal(t, kernel.Event(0), results[1])
	assert.True(t, ev.IsSet())
}

func TestEventAutoResetWakesOnlyOne(t *testing.T) {
	k := kernel.New()
	ev := NewEvent(k, true)
	ev.Set()

	assert.True(t, ev.IsSet())
	ev.Set() // still just one pending signal
	assert.True(t, ev.IsSet())

	// only one waiter gets through on that single signal
	var results [2]kernel.Event
	w := k.Spawn("w", func(c kernel.Context) {
		results[0] = ev.Wait(c, kernel.Immediate)
		results[1] = ev.Wait(c, kernel.Immediate)
	}, nil, 1)
	run(k, w)

	assert.Equal(t, kernel.Event(0), results[0])
	assert.Equal(t, kernel.Timeout, results[1])
	assert.False(t, ev.IsSet())
}
