package output

import (
	"rewired/hw/cga"
)

//go:generate go tool stringer -type=Kind -trimprefix=Kind

// Kind identifies the type of an output event.
type Kind uint8

const (
	// KindFrame events carry a snapshot of the video memory.
	KindFrame Kind = iota
	// KindDelay events carry a number of milliseconds that must elapse
	// before the following events are presented.
	KindDelay
	// KindSpeaker events carry a PC speaker timestamp, for future audio
	// synchronization.
	KindSpeaker
)

// An Event is a single output item, in the order the program produced it.
// Frame is only set for KindFrame, Value only for the other kinds.
type Event struct {
	Kind  Kind
	Frame *cga.Framebuffer
	Value uint32
}
