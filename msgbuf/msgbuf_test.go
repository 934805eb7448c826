package msgbuf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kernelsim/statego/kernel"
)

func newTestKernel() *kernel.Kernel { return kernel.New() }

// run spawns and starts every task, hands control to the kernel on its
// own goroutine, and waits for all of them to exit before returning.
func run(k *kernel.Kernel, tasks ...*kernel.TCB) {
	for _, t := range tasks {
		t.Start()
	}
	go k.Start()
	for _, t := range tasks {
		t.Wait()
	}
}

// waitUntil polls cond, which must be safe to call concurrently with
// the kernel's own goroutines (msgbuf's observational methods all take
// the critical section). Used only to let a background task reach a
// parked state before the test drives the next step.
func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	for i := 0; i < 10000 && !cond(); i++ {
		time.Sleep(100 * time.Microsecond)
	}
	require.True(t, cond(), "condition never became true")
}

func TestFrameRoundTrip(t *testing.T) {
	k := kernel.New()
	buf := New(k, 64)

	var got int
	dst := make([]byte, 16)

	reader := k.Spawn("reader", func(c kernel.Context) {
		got = int(buf.Wait(c, dst, kernel.Infinite))
	}, nil, 1)
	writer := k.Spawn("writer", func(c kernel.Context) {
		ev := buf.Send(c, []byte("hello"), kernel.Infinite)
		assert.Equal(t, kernel.Event(5), ev)
	}, nil, 2)

	run(k, reader, writer)

	assert.Equal(t, 5, got)
	assert.Equal(t, "hello", string(dst[:got]))
	assert.Equal(t, 0, buf.Count())
}

func TestTruncationOnUndersizedReadBuffer(t *testing.T) {
	k := kernel.New()
	buf := New(k, 64)

	n := buf.Give([]byte("abcdefgh"))
	assert.Equal(t, 8, n)

	small := make([]byte, 3)
	got := buf.Take(small)
	assert.Equal(t, 3, got)
	assert.Equal(t, "abc", string(small))
	// the rest of that frame is discarded, not delivered later
	assert.Equal(t, 0, buf.Count())
}

func TestZeroLengthSendIsNoOp(t *testing.T) {
	k := kernel.New()
	buf := New(k, 64)

	assert.Equal(t, 0, buf.Give(nil))
	assert.Equal(t, 0, buf.Count())
}

func TestOversizeFrameFailsImmediately(t *testing.T) {
	k := kernel.New()
	buf := New(k, 8)

	assert.Equal(t, 0, buf.Give(make([]byte, 16)))

	var result kernel.Event
	sender := k.Spawn("sender", func(c kernel.Context) {
		result = buf.Send(c, make([]byte, 16), kernel.Infinite)
	}, nil, 1)
	run(k, sender)

	assert.Equal(t, kernel.Timeout, result)
}

func TestImmediateEquivalentToTakeGive(t *testing.T) {
	k := kernel.New()
	buf := New(k, 64)

	var result kernel.Event
	dst := make([]byte, 4)
	task := k.Spawn("task", func(c kernel.Context) {
		result = buf.Wait(c, dst, kernel.Immediate)
	}, nil, 1)
	run(k, task)

	assert.Equal(t, kernel.Timeout, result)
	assert.Equal(t, 0, buf.Take(dst))
}

func TestPushEvictsOldestFrame(t *testing.T) {
	k := kernel.New()
	buf := New(k, 8) // room for one 4-payload-byte frame (2-byte prefix) at a time

	assert.Equal(t, 4, buf.Give([]byte("aaaa")))
	assert.Equal(t, 4, buf.Push([]byte("bbbb")))

	dst := make([]byte, 4)
	got := buf.Take(dst)
	assert.Equal(t, 4, got)
	assert.Equal(t, "bbbb", string(dst))
}

func TestPushDoesNotServiceBlockedProducer(t *testing.T) {
	k := kernel.New()
	buf := New(k, 8)

	assert.Equal(t, 4, buf.Give([]byte("aaaa")))

	var blockedResult kernel.Event
	blocked := k.Spawn("blocked-sender", func(c kernel.Context) {
		blockedResult = buf.Send(c, []byte("bbbb"), kernel.Infinite)
	}, nil, 1)
	blocked.Start()
	go k.Start()

	// let the blocked sender reach Send and park before pushing.
	waitUntil(t, func() bool { return blocked.State() == kernel.StateBlocked })

	// a third party evicts the resident frame and inserts its own —
	// the blocked sender must stay parked, per spec.md's scenario.
	assert.Equal(t, 4, buf.Push([]byte("cccc")))

	dst := make([]byte, 4)
	assert.Equal(t, 4, buf.Take(dst))
	assert.Equal(t, "cccc", string(dst))

	blocked.Wait()
	assert.Equal(t, kernel.Event(4), blockedResult)
}

func TestKillWakesAllWaitersWithStopped(t *testing.T) {
	k := kernel.New()
	buf := New(k, 64)

	results := make([]kernel.Event, 2)
	dst := make([]byte, 4)
	r1 := k.Spawn("r1", func(c kernel.Context) {
		results[0] = buf.Wait(c, dst, kernel.Infinite)
	}, nil, 1)
	r2 := k.Spawn("r2", func(c kernel.Context) {
		results[1] = buf.Wait(c, dst, kernel.Infinite)
	}, nil, 2)

	r1.Start()
	r2.Start()
	go k.Start()

	waitUntil(t, func() bool {
		return r1.State() == kernel.StateBlocked && r2.State() == kernel.StateBlocked
	})
	buf.Kill()
	r1.Wait()
	r2.Wait()

	assert.Equal(t, kernel.Stopped, results[0])
	assert.Equal(t, kernel.Stopped, results[1])
}

func TestGiveAndTakeAreISRSafeNonBlocking(t *testing.T) {
	k := kernel.New()
	buf := New(k, 32)

	assert.Equal(t, 3, buf.Give([]byte("abc")))
	dst := make([]byte, 3)
	assert.Equal(t, 3, buf.Take(dst))
	assert.Equal(t, "abc", string(dst))
}
