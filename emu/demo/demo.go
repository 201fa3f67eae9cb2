// Package demo is a tiny program producing output the way a translated game
// does: it draws into a CGA framebuffer, presents it, then waits. It's used
// to create recordings and to check a setup without any game data.
package demo

import (
	"io"

	"rewired/emu/callstack"
	"rewired/emu/log"
	"rewired/emu/output"
	"rewired/hw/cga"
)

// Fake code locations, reported in call stack traces.
var (
	addrMain    = callstack.Addr{Seg: 0x1000, Off: 0x0000}
	addrDraw    = callstack.Addr{Seg: 0x1000, Off: 0x0100}
	addrPresent = callstack.Addr{Seg: 0x1000, Off: 0x0200}
	addrStuck   = callstack.Addr{Seg: 0x1000, Off: 0x0300}
)

const (
	barWidth = 16
	beepRate = 35 // frames between beeps
)

type Config struct {
	// Frames is the number of frames to produce.
	Frames int
	// FrameDelay is the wait after each frame, in milliseconds.
	FrameDelay uint32
	// Stuck makes the program stop waiting after that many frames and keep
	// presenting frames forever. Zero disables it.
	Stuck int
}

type Program struct {
	cfg   Config
	frame int

	fb    cga.Framebuffer
	stack callstack.Stack
	pc    callstack.Addr
}

func New(cfg Config) *Program {
	log.ModEmu.InfoZ("Demo program loaded").
		Int("frames", cfg.Frames).
		Uint("frame_delay", uint64(cfg.FrameDelay)).
		Int("stuck", cfg.Stuck).
		End()
	return &Program{cfg: cfg, pc: addrMain}
}

// Tracer returns a tracer of the program call stack.
func (p *Program) Tracer() output.Tracer {
	return callstack.Tracer{
		Stack: &p.stack,
		PC:    func() callstack.Addr { return p.pc },
	}
}

func (p *Program) call(target callstack.Addr, fn func()) {
	caller := p.pc
	ret := caller
	ret.Off += 3
	p.stack.Push(caller, target, ret, callstack.None)
	p.pc = target
	fn()
	p.stack.Pop()
	p.pc = caller
}

// Feed runs the program until it waits, that is until it pushes a delay into
// out. It returns io.EOF once all frames have been produced. A stuck program
// never returns.
func (p *Program) Feed(out output.Producer) error {
	if p.frame >= p.cfg.Frames && p.cfg.Stuck == 0 {
		return io.EOF
	}

	for {
		i := p.frame
		p.frame++
		p.call(addrDraw, func() { p.draw(i) })

		if p.cfg.Stuck > 0 && i >= p.cfg.Stuck {
			p.call(addrStuck, func() {
				p.pc.Off += 0x10
				p.call(addrPresent, func() { out.PushFrame(p.Tracer(), &p.fb) })
			})
			continue
		}

		p.call(addrPresent, func() { out.PushFrame(p.Tracer(), &p.fb) })
		if i%beepRate == 0 {
			out.PushSpeakerTimestamp(uint32(i) * p.cfg.FrameDelay)
		}
		out.PushDelay(p.cfg.FrameDelay)
		return nil
	}
}

// Run runs the program to completion without ever consuming its output.
func (p *Program) Run(out output.Producer) {
	for p.Feed(out) == nil {
	}
}

// draw paints vertical color bars scrolling one pixel per frame.
func (p *Program) draw(frame int) {
	for y := range cga.Height {
		for x := range cga.Width {
			idx := uint8((x+frame)/barWidth) & 3
			if y >= cga.Height-8 {
				idx = uint8(frame>>2) & 3
			}
			p.fb.SetPixel(x, y, idx)
		}
	}
}
