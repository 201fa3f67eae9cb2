package output

import (
	"github.com/murkland/ringbuf"
)

const initialRingSize = 64

// ring is a FIFO of events. It doubles its capacity when full since the
// number of queued delays and speaker timestamps is unbounded.
type ring struct {
	buf  *ringbuf.RingBuf[Event]
	size int
	one  [1]Event
}

func newRing() *ring {
	return &ring{
		buf:  ringbuf.New[Event](initialRingSize),
		size: initialRingSize,
	}
}

func (r *ring) len() int {
	return r.buf.Used()
}

func (r *ring) push(ev Event) {
	if r.buf.Free() == 0 {
		r.grow()
	}
	r.one[0] = ev
	r.buf.Push(r.one[:])
	r.one[0] = Event{}
}

func (r *ring) pop() (Event, bool) {
	if r.buf.Used() == 0 {
		return Event{}, false
	}
	r.buf.Pop(r.one[:], 0)
	ev := r.one[0]
	r.one[0] = Event{}
	return ev, true
}

func (r *ring) grow() {
	pending := make([]Event, r.buf.Used())
	r.buf.Pop(pending, 0)

	r.size *= 2
	r.buf = ringbuf.New[Event](r.size)
	r.buf.Push(pending)
}
