// Package msgbuf implements the message buffer: the canonical waitable
// object built on kernel's generic wait/wake framework (spec.md §3, §4.6).
// It is a ring of length-prefixed frames — a single WaitQueue parks
// whichever side (readers or writers) is currently stalled, never both
// at once, since a buffer can't be simultaneously empty and full.
package msgbuf

import "github.com/kernelsim/statego/kernel"

// prefixSize is the width of the little-endian frame-length header
// stored ahead of every frame's payload in the ring (spec.md §3 "Data
// Model").
const prefixSize = 2

// pendingOp records what a parked task is waiting to transfer, keyed by
// its TCB. The generic wait/wake framework publishes only a transfer
// count into a woken task's event slot (spec.md §4.5); the actual bytes
// have to move before that publish happens, so whichever side services
// the queue looks up the parked peer's buffer here and copies directly
// into or out of it. This is msgbuf's own bookkeeping, not part of the
// generic TCB — a side table keyed by *kernel.TCB keeps the core
// scheduler ignorant of what any particular waitable transfers.
type pendingOp struct {
	isRead bool   // true: task is blocked in Wait/Take, buf is its destination
	buf    []byte // destination slice for a reader, payload for a writer
}

// Buffer is a single message buffer instance (spec.md §3's msg_t:
// queue, res, count, limit, head, tail, data, size — one wait queue,
// not two, confirmed against original_source/StateOS/kernel/inc/
// osmessagebuffer.h's single tsk_t *queue field).
type Buffer struct {
	k     *kernel.Kernel
	queue kernel.WaitQueue

	data  []byte
	head  int
	tail  int
	count int // bytes currently stored, prefixes included
	size  int // payload length of the first (oldest) frame, cached
	limit int

	pending map[*kernel.TCB]*pendingOp
	killed  bool
	res     any
}

// New allocates a message buffer with room for limit bytes of prefixed
// frame data (spec.md §6 "create").
func New(k *kernel.Kernel, limit int) *Buffer {
	return &Buffer{
		k:       k,
		data:    make([]byte, limit),
		limit:   limit,
		pending: make(map[*kernel.TCB]*pendingOp),
	}
}

// SetResource attaches an opaque owner handle (spec.md's "res" field):
// storage for whatever driver or subsystem owns this buffer, untouched
// by msgbuf itself.
func (b *Buffer) SetResource(r any) { b.res = r }

// Resource returns the handle set by SetResource, or nil.
func (b *Buffer) Resource() any { return b.res }

func (b *Buffer) space() int { return b.limit - b.count }

func (b *Buffer) putByte(pos int, v byte) { b.data[pos%b.limit] = v }
func (b *Buffer) getByte(pos int) byte    { return b.data[pos%b.limit] }

func (b *Buffer) writeLen(pos, n int) {
	b.putByte(pos, byte(n))
	b.putByte(pos+1, byte(n>>8))
}

func (b *Buffer) readLen(pos int) int {
	lo := b.getByte(pos)
	hi := b.getByte(pos + 1)
	return int(lo) | int(hi)<<8
}

// appendFrameLocked writes payload's prefix and bytes at the tail and
// refreshes size if the buffer was empty before this call. Caller must
// already have verified prefixSize+len(payload) <= space() and must
// hold the critical section.
func (b *Buffer) appendFrameLocked(payload []byte) {
	wasEmpty := b.count == 0
	b.writeLen(b.tail, len(payload))
	for i, c := range payload {
		b.putByte(b.tail+prefixSize+i, c)
	}
	b.tail = (b.tail + prefixSize + len(payload)) % b.limit
	b.count += prefixSize + len(payload)
	if wasEmpty {
		b.size = len(payload)
	}
}

// consumeFrameLocked copies up to len(dst) bytes of the first frame
// into dst, discards whatever of that frame dst couldn't hold, advances
// head past the whole frame regardless, and refreshes size. Returns the
// number of bytes actually delivered. Caller must hold the critical
// section and must already know count > 0.
func (b *Buffer) consumeFrameLocked(dst []byte) int {
	n := b.size
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = b.getByte(b.head + prefixSize + i)
	}
	b.head = (b.head + prefixSize + b.size) % b.limit
	b.count -= prefixSize + b.size
	if b.count == 0 {
		b.size = 0
	} else {
		b.size = b.readLen(b.head)
	}
	return n
}

// wakeOneConsumerLocked services the highest-priority parked reader (if
// any) directly out of the frame that was just appended, rather than
// leaving it to self-serve later: the producer IS the waker, so it
// performs the reader's copy before publishing the reader's event
// (spec.md §4.5's "wake one consumer if waiting").
func (b *Buffer) wakeOneConsumerLocked() {
	if b.queue.Empty() {
		return
	}
	waiter := b.queue.Peek()
	op := b.pending[waiter]
	if op == nil || !op.isRead {
		return
	}
	n := b.consumeFrameLocked(op.buf)
	delete(b.pending, waiter)
	b.k.WakeOne(&b.queue, kernel.Event(n))
}

// wakeOneProducerLocked services the highest-priority parked writer (if
// any) whose frame now fits after space was freed by a read. A parked
// writer whose frame still doesn't fit is left blocked.
func (b *Buffer) wakeOneProducerLocked() {
	if b.queue.Empty() {
		return
	}
	waiter := b.queue.Peek()
	op := b.pending[waiter]
	if op == nil || op.isRead {
		return
	}
	if prefixSize+len(op.buf) > b.space() {
		return
	}
	b.appendFrameLocked(op.buf)
	delete(b.pending, waiter)
	b.k.WakeOne(&b.queue, kernel.Event(len(op.buf)))
}

// Wait is the blocking receive (spec.md §6 "wait"/"receive"): parks the
// caller until a frame is available, the deadline elapses, or the
// buffer is killed. A frame larger than dst is truncated; the rest of
// that frame is discarded, never delivered on a later call. IMMEDIATE
// degenerates to exactly Take's fast path, just reported through the
// Event channel (Timeout rather than 0) since it goes through the
// generic framework's immediate branch.
func (b *Buffer) Wait(ctx kernel.Context, dst []byte, deadline kernel.Duration) kernel.Event {
	self := ctx.Self()
	b.k.Enter()
	if b.killed {
		b.k.Exit()
		return kernel.Stopped
	}
	if b.count > 0 {
		n := b.consumeFrameLocked(dst)
		b.wakeOneProducerLocked()
		b.k.Exit()
		b.k.Checkpoint(self)
		return kernel.Event(n)
	}
	if deadline == kernel.Immediate {
		b.k.Exit()
		return kernel.Timeout
	}
	b.pending[self] = &pendingOp{isRead: true, buf: dst}
	ev := b.k.ParkCurrent(self, &b.queue, deadline)
	delete(b.pending, self) // in case a timeout or Kill woke self instead
	return ev
}

// Send is the blocking send (spec.md §6 "send"): parks the caller until
// room opens for prefixSize+len(payload) bytes, the deadline elapses,
// or the buffer is killed. A zero-length payload is a no-op that
// returns 0 without blocking. A payload that can never fit even in an
// empty buffer fails with Timeout regardless of deadline, since waiting
// could never help.
func (b *Buffer) Send(ctx kernel.Context, payload []byte, deadline kernel.Duration) kernel.Event {
	self := ctx.Self()
	n := len(payload)
	b.k.Enter()
	if n == 0 {
		b.k.Exit()
		return 0
	}
	if prefixSize+n > b.limit {
		b.k.Exit()
		return kernel.Timeout
	}
	if b.killed {
		b.k.Exit()
		return kernel.Stopped
	}
	if prefixSize+n <= b.space() {
		b.appendFrameLocked(payload)
		b.wakeOneConsumerLocked()
		b.k.Exit()
		b.k.Checkpoint(self)
		return kernel.Event(n)
	}
	if deadline == kernel.Immediate {
		b.k.Exit()
		return kernel.Timeout
	}
	b.pending[self] = &pendingOp{isRead: false, buf: payload}
	ev := b.k.ParkCurrent(self, &b.queue, deadline)
	delete(b.pending, self)
	return ev
}

// Take is the ISR-safe non-blocking receive (spec.md §6 "take"): never
// parks, returns 0 immediately if no frame is available or the buffer
// has been killed.
func (b *Buffer) Take(dst []byte) int {
	b.k.Enter()
	defer b.k.Exit()
	if b.killed || b.count == 0 {
		return 0
	}
	n := b.consumeFrameLocked(dst)
	b.wakeOneProducerLocked()
	return n
}

// Give is the ISR-safe non-blocking send (spec.md §6 "give"): never
// parks, returns 0 immediately if the frame can't fit (including the
// always-fails case of a frame bigger than limit) or the buffer has
// been killed.
func (b *Buffer) Give(payload []byte) int {
	b.k.Enter()
	defer b.k.Exit()
	n := len(payload)
	if n == 0 {
		return 0
	}
	if prefixSize+n > b.limit || b.killed || prefixSize+n > b.space() {
		return 0
	}
	b.appendFrameLocked(payload)
	b.wakeOneConsumerLocked()
	return n
}

// Push is the ISR-safe non-blocking send that never fails for want of
// space (spec.md §6 "push"): it evicts the oldest frame, repeatedly if
// necessary, until payload fits, then appends it. It never touches the
// producer side of the wait queue — a blocked sender stays blocked
// until a consumer drains, since the freed room is always claimed by
// push's own frame first (see DESIGN.md's resolution of the "evicting a
// frame whose producer is still parked" open question: in this design
// a frame only ever enters the ring once its Send/Give/Push has already
// returned success, so no producer is ever still parked on an occupied
// frame — the eviction loop here only ever discards already-completed,
// ownerless frames).
func (b *Buffer) Push(payload []byte) int {
	b.k.Enter()
	defer b.k.Exit()
	n := len(payload)
	if n == 0 {
		return 0
	}
	if prefixSize+n > b.limit || b.killed {
		return 0
	}
	for prefixSize+n > b.space() {
		b.head = (b.head + prefixSize + b.size) % b.limit
		b.count -= prefixSize + b.size
		if b.count == 0 {
			b.size = 0
		} else {
			b.size = b.readLen(b.head)
		}
	}
	b.appendFrameLocked(payload)
	b.wakeOneConsumerLocked()
	return n
}

// Count returns the number of bytes currently stored, prefixes
// included. ISR-safe.
func (b *Buffer) Count() int {
	b.k.Enter()
	defer b.k.Exit()
	return b.count
}

// Space returns the number of bytes currently free. ISR-safe.
func (b *Buffer) Space() int {
	b.k.Enter()
	defer b.k.Exit()
	return b.space()
}

// Kill resets the buffer to empty and wakes every parked task with
// Stopped, marking the object unusable (spec.md §3 "Lifecycle", §8
// "Kill semantics"). Idempotent.
func (b *Buffer) Kill() {
	b.k.Enter()
	b.killed = true
	b.pending = make(map[*kernel.TCB]*pendingOp)
	n := b.k.WakeAll(&b.queue, kernel.Stopped)
	b.head, b.tail, b.count, b.size = 0, 0, 0, 0
	b.k.Exit()
	if n > 0 {
		b.k.Logf("msgbuf: killed, %d waiter(s) woken with Stopped", n)
	}
}

// Delete kills the buffer and releases its resource handle. A deleted
// buffer must not be used again.
func (b *Buffer) Delete() {
	b.Kill()
	b.k.Enter()
	b.res = nil
	b.k.Exit()
}
