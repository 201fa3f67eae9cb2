package record

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"rewired/emu/log"
	"rewired/emu/output"
	"rewired/hw/cga"
)

// Reader reads the events of a recording.
type Reader struct {
	closer    io.Closer
	zr        *zstd.Decoder
	truncated bool

	fb  cga.Framebuffer
	buf [4]byte
}

// Open opens the recording file filename.
func Open(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	rr, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	rr.closer = f
	return rr, nil
}

// NewReader checks the recording header and returns a reader positioned on
// the first record.
func NewReader(r io.Reader) (*Reader, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}

	var hdr [4]byte
	if _, err := io.ReadFull(zr, hdr[:]); err != nil {
		zr.Close()
		return nil, fmt.Errorf("invalid format: %w", err)
	}
	if string(hdr[:]) != header {
		zr.Close()
		return nil, fmt.Errorf("invalid format")
	}

	var v uint8
	if err := binary.Read(zr, binary.LittleEndian, &v); err != nil {
		zr.Close()
		return nil, err
	}
	if v != version {
		zr.Close()
		return nil, fmt.Errorf("unsupported recording version: %02x vs %02x", v, version)
	}

	return &Reader{zr: zr}, nil
}

// Next returns the next event, or io.EOF at the end of the recording. The
// framebuffer of a frame event is only valid until the next call.
//
// A recording cut in the middle of a record, as happens when the recorded
// program was aborted, ends at the last complete record.
func (rr *Reader) Next() (output.Event, error) {
	var kind [1]byte
	if _, err := io.ReadFull(rr.zr, kind[:]); err != nil {
		return output.Event{}, err
	}

	ev := output.Event{Kind: output.Kind(kind[0])}
	var err error
	switch ev.Kind {
	case output.KindFrame:
		_, err = io.ReadFull(rr.zr, rr.fb[:])
		ev.Frame = &rr.fb
	case output.KindDelay, output.KindSpeaker:
		_, err = io.ReadFull(rr.zr, rr.buf[:])
		ev.Value = binary.LittleEndian.Uint32(rr.buf[:])
	default:
		return output.Event{}, fmt.Errorf("invalid record kind %d", kind[0])
	}

	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			log.ModRecord.WarnZ("Recording was truncated").Stringer("kind", ev.Kind).End()
			rr.truncated = true
			return output.Event{}, io.EOF
		}
		return output.Event{}, err
	}
	return ev, nil
}

// Truncated reports whether the recording ended in the middle of a record.
func (rr *Reader) Truncated() bool {
	return rr.truncated
}

func (rr *Reader) Close() error {
	rr.zr.Close()
	if rr.closer != nil {
		return rr.closer.Close()
	}
	return nil
}

// Feed pushes the events of rr into p, up to and including the next delay,
// just like the translated program runs until it has to wait. It returns
// io.EOF once the recording is exhausted.
func Feed(rr *Reader, p output.Producer, stack output.Tracer) error {
	for {
		ev, err := rr.Next()
		if err != nil {
			return err
		}

		switch ev.Kind {
		case output.KindFrame:
			p.PushFrame(stack, ev.Frame)
		case output.KindSpeaker:
			p.PushSpeakerTimestamp(ev.Value)
		case output.KindDelay:
			p.PushDelay(ev.Value)
			return nil
		}
	}
}
