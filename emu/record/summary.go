package record

import (
	"errors"
	"io"

	"github.com/go-faster/jx"

	"rewired/emu/output"
)

// Summary describes the content of a recording.
type Summary struct {
	Frames            int
	Delays            int
	SpeakerTimestamps int

	// Total of all delays, that is the recording duration in milliseconds.
	DelayMillis uint64
	// Longest run of frames not separated by a delay.
	MaxBurst  int
	Truncated bool
}

// Summarize reads rr until the end and summarizes its content.
func Summarize(rr *Reader) (Summary, error) {
	var (
		s     Summary
		burst int
	)
	for {
		ev, err := rr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return s, err
		}

		switch ev.Kind {
		case output.KindFrame:
			s.Frames++
			burst++
			s.MaxBurst = max(s.MaxBurst, burst)
		case output.KindDelay:
			s.Delays++
			s.DelayMillis += uint64(ev.Value)
			burst = 0
		case output.KindSpeaker:
			s.SpeakerTimestamps++
		}
	}
	s.Truncated = rr.Truncated()
	return s, nil
}

// Encode writes the summary as a JSON object.
func (s Summary) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("frames", func(e *jx.Encoder) { e.Int(s.Frames) })
		e.Field("delays", func(e *jx.Encoder) { e.Int(s.Delays) })
		e.Field("speaker_timestamps", func(e *jx.Encoder) { e.Int(s.SpeakerTimestamps) })
		e.Field("delay_ms", func(e *jx.Encoder) { e.UInt64(s.DelayMillis) })
		e.Field("max_burst", func(e *jx.Encoder) { e.Int(s.MaxBurst) })
		e.Field("truncated", func(e *jx.Encoder) { e.Bool(s.Truncated) })
	})
}

// Decode reads a summary written by Encode.
func (s *Summary) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "frames":
			s.Frames, err = d.Int()
		case "delays":
			s.Delays, err = d.Int()
		case "speaker_timestamps":
			s.SpeakerTimestamps, err = d.Int()
		case "delay_ms":
			s.DelayMillis, err = d.UInt64()
		case "max_burst":
			s.MaxBurst, err = d.Int()
		case "truncated":
			s.Truncated, err = d.Bool()
		default:
			err = d.Skip()
		}
		return err
	})
}
