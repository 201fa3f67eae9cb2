// Package callstack tracks the call stack of the translated program, so that
// a trace can be printed when the program misbehaves.
package callstack

import (
	"fmt"
	"io"
	"slices"
)

// Addr is a real-mode segment:offset address.
type Addr struct {
	Seg, Off uint16
}

func (a Addr) String() string {
	return fmt.Sprintf("%04X:%04X", a.Seg, a.Off)
}

type Flag uint8

const (
	None Flag = iota
	Interrupt
	IRQ
)

type frame struct {
	src    Addr
	target Addr
	ret    Addr
	flag   Flag
}

// A Stack records the calls the program made and has not returned from yet.
// The zero value is an empty stack.
type Stack struct {
	frames []frame
}

// Push records a call from src to target, returning at ret.
func (cs *Stack) Push(src, target, ret Addr, flag Flag) {
	cs.frames = append(cs.frames, frame{
		src:    src,
		target: target,
		ret:    ret,
		flag:   flag,
	})
}

func (cs *Stack) Len() int {
	return len(cs.frames)
}

// Pop removes the innermost frame and returns the address it returns to.
// Popping an empty stack returns false.
func (cs *Stack) Pop() (Addr, bool) {
	if cs.Len() == 0 {
		return Addr{}, false
	}
	f := cs.frames[cs.Len()-1]
	cs.frames = cs.frames[:cs.Len()-1]
	return f.ret, true
}

func (cs *Stack) Reset() {
	cs.frames = cs.frames[:0]
}

// FrameInfo describes a frame: the entry point of the function and the
// current location inside it.
type FrameInfo [2]string

// Build returns the frames, innermost first. pc is the current location in
// the innermost function.
func (cs *Stack) Build(pc Addr) []FrameInfo {
	nfos := make([]FrameInfo, 0, cs.Len()+1)
	var curf *frame
	for i, f := range cs.frames {
		if i > 0 {
			curf = &cs.frames[i-1]
		}
		nfos = slices.Insert(nfos, 0, FrameInfo{
			entryPoint(curf),
			f.src.String(),
		})
	}

	// Current frame
	curf = nil
	if cs.Len() > 0 {
		curf = &cs.frames[cs.Len()-1]
	}

	return slices.Insert(nfos, 0, FrameInfo{
		entryPoint(curf),
		pc.String(),
	})
}

func entryPoint(f *frame) string {
	if f == nil {
		return "[bottom of stack]"
	}

	str := f.target.String()
	switch f.flag {
	case Interrupt:
		return "[int] " + str
	case IRQ:
		return "[irq] " + str
	default:
		return str
	}
}

// Tracer ties a Stack to the current program location so that it can be
// traced at any time.
type Tracer struct {
	*Stack
	PC func() Addr
}

// Trace writes the stack, one frame per line, innermost first.
func (t Tracer) Trace(w io.Writer) {
	var pc Addr
	if t.PC != nil {
		pc = t.PC()
	}
	for i, nfo := range t.Build(pc) {
		fmt.Fprintf(w, "#%-3d %-24s at %s\n", i, nfo[0], nfo[1])
	}
}
