// Package output buffers the video frames, delays and speaker timestamps
// produced by the translated program, and paces them for real-time
// presentation.
//
// The program pushes events as fast as it runs. The host calls Step
// repeatedly: frames are presented as soon as they are reached, delays make
// Step return the number of milliseconds the host should wait before calling
// it again.
//
// A Queue is not safe for concurrent use. Producer and consumer are expected
// to run on the same goroutine, taking turns.
package output

import (
	"fmt"
	"io"
	"strings"

	"rewired/emu/log"
	"rewired/hw/cga"
)

const (
	// DefaultFrameCeiling is the default maximum number of frames that can be
	// waiting in the queue. Reaching it means the program is producing
	// frames without ever waiting, which is most likely an infinite loop.
	DefaultFrameCeiling = 500

	// MaxDelayPerStep is the longest delay Step ever returns, so that the
	// host loop keeps control over input polling and cancellation.
	MaxDelayPerStep = 100

	// Number of released frame copies kept around for reuse.
	maxSpareFrames = 8
)

// A Tracer writes a trace of the producer call stack. It's used to report
// where a runaway program got stuck.
type Tracer interface {
	Trace(w io.Writer)
}

// Producer is the interface of the program side of the queue.
type Producer interface {
	PushFrame(stack Tracer, fb *cga.Framebuffer)
	PushDelay(millis uint32)
	PushSpeakerTimestamp(ts uint32)
}

// VideoSink receives converted frames. The pixels are only valid for the
// duration of the call, the sink must display or copy them before returning.
type VideoSink interface {
	PresentFrame(pix []byte)
}

// SpeakerSink receives speaker timestamps as they're drained.
type SpeakerSink interface {
	SpeakerTimestamp(ts uint32)
}

type Config struct {
	Palette cga.Palette

	// FrameCeiling is the maximum number of queued frames.
	// Zero means DefaultFrameCeiling.
	FrameCeiling int

	// Video receives rendered frames, nil discards them.
	Video VideoSink
	// Speaker receives speaker timestamps, nil discards them.
	Speaker SpeakerSink

	// Abort is called when the frame ceiling is exceeded, with the trace of
	// the producer call stack, and must not return. By default both are
	// logged and the process exits.
	Abort func(msg, trace string)
}

// Stats are the queue counters since its creation.
type Stats struct {
	FramesIn          uint64
	FramesOut         uint64
	DelayIn           uint64 // ms
	DelayOut          uint64 // ms
	SpeakerTimestamps uint64

	Depth        int // events in the queue
	QueuedFrames int
	PendingDelay uint64 // ms
}

type Queue struct {
	events *ring

	// number of frame events in the queue.
	frames int
	// delay popped from the queue but not yet returned by Step.
	delay uint64

	ceiling int
	conv    *cga.Converter
	video   VideoSink
	speaker SpeakerSink
	abort   func(string, string)

	spare []*cga.Framebuffer
	stats Stats
}

var _ Producer = (*Queue)(nil)

func NewQueue(cfg Config) *Queue {
	if cfg.FrameCeiling <= 0 {
		cfg.FrameCeiling = DefaultFrameCeiling
	}
	if cfg.Abort == nil {
		cfg.Abort = func(msg, trace string) {
			log.ModOutput.FatalZ(msg).String("trace", trace).End()
		}
	}

	return &Queue{
		events:  newRing(),
		ceiling: cfg.FrameCeiling,
		conv:    cga.NewConverter(cfg.Palette),
		video:   cfg.Video,
		speaker: cfg.Speaker,
		abort:   cfg.Abort,
	}
}

// PushFrame queues a copy of fb. The producer is free to modify fb as soon
// as PushFrame returns.
//
// Exceeding the frame ceiling is fatal: the trace of stack is logged and the
// process is aborted.
func (q *Queue) PushFrame(stack Tracer, fb *cga.Framebuffer) {
	if q.frames >= q.ceiling {
		q.runaway(stack)
	}

	cp := q.alloc()
	*cp = *fb
	q.events.push(Event{Kind: KindFrame, Frame: cp})
	q.frames++
	q.stats.FramesIn++
}

func (q *Queue) runaway(stack Tracer) {
	var sb strings.Builder
	if stack != nil {
		stack.Trace(&sb)
	}
	msg := fmt.Sprintf("frame queue is too deep (%d frames), infinite loop likely", q.frames)
	q.abort(msg, sb.String())
	panic(msg + "\n" + sb.String())
}

func (q *Queue) PushDelay(millis uint32) {
	q.events.push(Event{Kind: KindDelay, Value: millis})
	q.stats.DelayIn += uint64(millis)
}

func (q *Queue) PushSpeakerTimestamp(ts uint32) {
	q.events.push(Event{Kind: KindSpeaker, Value: ts})
}

// Clear drops all queued events and the pending delay.
func (q *Queue) Clear() {
	released := 0
	for {
		ev, ok := q.events.pop()
		if !ok {
			break
		}
		if ev.Kind == KindFrame {
			q.release(ev.Frame)
			released++
		}
	}
	q.frames = 0
	q.delay = 0

	log.ModOutput.DebugZ("Queue cleared").Int("frames", released).End()
}

// Close clears the queue. The queue can still be used afterwards.
func (q *Queue) Close() {
	q.Clear()
}

// RenderFrame converts fb to RGBA and hands it to the video sink.
func (q *Queue) RenderFrame(fb *cga.Framebuffer) {
	pix := q.conv.Convert(fb)
	if q.video != nil {
		q.video.PresentFrame(pix)
	}
}

// Step presents queued output until a delay is reached or the queue is
// empty. It returns the number of milliseconds to wait before the next call,
// at most MaxDelayPerStep, or 0 once everything has been presented.
func (q *Queue) Step() uint32 {
	for {
		if q.delay > 0 {
			d := min(q.delay, MaxDelayPerStep)
			q.delay -= d
			q.stats.DelayOut += d
			return uint32(d)
		}

		ev, ok := q.events.pop()
		if !ok {
			return 0
		}

		switch ev.Kind {
		case KindFrame:
			q.RenderFrame(ev.Frame)
			q.frames--
			q.release(ev.Frame)
			q.stats.FramesOut++

		case KindDelay:
			q.delay += uint64(ev.Value)

		case KindSpeaker:
			q.stats.SpeakerTimestamps++
			if q.speaker != nil {
				q.speaker.SpeakerTimestamp(ev.Value)
			}
		}
	}
}

// Stats returns a snapshot of the queue counters.
func (q *Queue) Stats() Stats {
	s := q.stats
	s.Depth = q.events.len()
	s.QueuedFrames = q.frames
	s.PendingDelay = q.delay
	return s
}

// QueuedFrames returns the number of frame copies currently owned by the
// queue.
func (q *Queue) QueuedFrames() int {
	return q.frames
}

// Pending reports whether Step has anything left to present or wait for.
func (q *Queue) Pending() bool {
	return q.delay > 0 || q.events.len() > 0
}

func (q *Queue) alloc() *cga.Framebuffer {
	if n := len(q.spare); n > 0 {
		fb := q.spare[n-1]
		q.spare[n-1] = nil
		q.spare = q.spare[:n-1]
		return fb
	}
	return new(cga.Framebuffer)
}

func (q *Queue) release(fb *cga.Framebuffer) {
	if len(q.spare) < maxSpareFrames {
		q.spare = append(q.spare, fb)
	}
}
