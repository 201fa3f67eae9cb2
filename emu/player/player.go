// Package player drives an output queue in real time, alternating between the
// program producing output and the queue presenting it.
package player

import (
	"errors"
	"io"
	"sync/atomic"
	"time"

	"rewired/emu/log"
	"rewired/emu/output"
	"rewired/emu/record"
)

// A Source is the producing side: Feed runs until the next delay has been
// pushed into p, and returns io.EOF once there's nothing left to produce.
type Source interface {
	Feed(p output.Producer) error
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(p output.Producer) error

func (f SourceFunc) Feed(p output.Producer) error { return f(p) }

// Recording is a source replaying rr. Frames are pushed along with stack,
// which may be nil.
func Recording(rr *record.Reader, stack output.Tracer) Source {
	return SourceFunc(func(p output.Producer) error {
		return record.Feed(rr, p, stack)
	})
}

type Config struct {
	// Sleep waits for the given duration. Defaults to time.Sleep.
	Sleep func(time.Duration)

	// Poll is called between steps, returning false stops playback. It's
	// where the window pumps its events. Nil never stops.
	Poll func() bool
}

// A Player alternates between producing (feeding the source into the queue
// until the next delay) and consuming (stepping the queue and sleeping the
// delays it returns).
type Player struct {
	q     *output.Queue
	src   Source
	sleep func(time.Duration)
	poll  func() bool

	// These are accessed concurrently by the playback loop, signal handlers
	// and the rpc server.
	quit   atomic.Bool
	paused atomic.Bool
	stats  atomic.Pointer[output.Stats]
}

// How long to sleep between polls while paused.
const pausePoll = 50 * time.Millisecond

func New(q *output.Queue, src Source, cfg Config) *Player {
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	if cfg.Poll == nil {
		cfg.Poll = func() bool { return true }
	}
	return &Player{
		q:     q,
		src:   src,
		sleep: cfg.Sleep,
		poll:  cfg.Poll,
	}
}

// Stop, SetPause, Paused and Stats allow to control and monitor the
// playback loop in a concurrent-safe way.

// Stop makes Run return after the current step.
func (p *Player) Stop() {
	p.quit.Store(true)
}

func (p *Player) SetPause(pause bool) {
	if p.paused.CompareAndSwap(!pause, pause) {
		log.ModEmu.InfoZ("Playback paused").Bool("paused", pause).End()
	}
}

func (p *Player) Paused() bool { return p.paused.Load() }

// Stats returns the queue statistics as of the last step.
func (p *Player) Stats() output.Stats {
	if s := p.stats.Load(); s != nil {
		return *s
	}
	return output.Stats{}
}

// AddLogContext implements log.LogContext. It only reads the published
// stats, entries can be logged from any goroutine.
func (p *Player) AddLogContext(z *log.EntryZ) {
	if s := p.stats.Load(); s != nil {
		z.Int("queued_frames", s.QueuedFrames).Uint("pending_ms", s.PendingDelay)
	}
}

func (p *Player) publishStats() {
	s := p.q.Stats()
	p.stats.Store(&s)
}

// Run plays until the source is exhausted and all its output has been
// presented, or until stopped. The queue is cleared before returning.
func (p *Player) Run() error {
	log.AddContext(p)
	defer log.RemoveContext(p)

	start := time.Now()
	err := p.loop()
	p.q.Clear()
	p.publishStats()

	stats := p.Stats()
	log.ModEmu.InfoZ("Playback loop exited").
		Uint("frames_in", stats.FramesIn).
		Uint("frames_out", stats.FramesOut).
		Uint("delay_ms", stats.DelayOut).
		Uint("speaker_ts", stats.SpeakerTimestamps).
		Duration("elapsed", time.Since(start)).
		End()

	return err
}

func (p *Player) loop() error {
	eof := false
	for p.poll() {
		if p.quit.Load() {
			log.ModEmu.InfoZ("Playback stopped").End()
			return nil
		}

		if p.paused.Load() {
			// Don't burn cpu while paused.
			p.sleep(pausePoll)
			continue
		}

		if !p.q.Pending() {
			if eof {
				return nil
			}
			err := p.src.Feed(p.q)
			if errors.Is(err, io.EOF) {
				eof = true
			} else if err != nil {
				return err
			}
			continue
		}

		ms := p.q.Step()
		p.publishStats()
		if ms > 0 {
			p.sleep(time.Duration(ms) * time.Millisecond)
		}
	}

	log.ModEmu.InfoZ("Playback interrupted").End()
	return nil
}
