package record

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"rewired/emu/output"
	"rewired/hw/cga"
)

// Writer records producer calls into a recording, and optionally forwards
// them to another producer.
//
// Producer methods can't fail, the first write error is kept and returned by
// Err and Close. Nothing is written after an error.
type Writer struct {
	closer io.Closer
	w      *zstd.Encoder
	next   output.Producer
	err    error

	buf [5]byte
}

var _ output.Producer = (*Writer)(nil)

// Create creates the recording file filename.
func Create(filename string, next output.Producer) (*Writer, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	rw, err := newWriter(f, f, next)
	if err != nil {
		f.Close()
		return nil, err
	}
	return rw, nil
}

// NewWriter starts a recording into w. Close does not close w.
func NewWriter(w io.Writer, next output.Producer) (*Writer, error) {
	return newWriter(w, nil, next)
}

func newWriter(w io.Writer, closer io.Closer, next output.Producer) (*Writer, error) {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return nil, err
	}

	if _, err := zw.Write([]byte(header)); err != nil {
		zw.Close()
		return nil, err
	}
	if err := binary.Write(zw, binary.LittleEndian, uint8(version)); err != nil {
		zw.Close()
		return nil, err
	}

	return &Writer{
		closer: closer,
		w:      zw,
		next:   next,
	}, nil
}

func (rw *Writer) write(p []byte) {
	if rw.err != nil {
		return
	}
	_, rw.err = rw.w.Write(p)
}

func (rw *Writer) writeValue(kind output.Kind, v uint32) {
	rw.buf[0] = uint8(kind)
	binary.LittleEndian.PutUint32(rw.buf[1:], v)
	rw.write(rw.buf[:])
}

func (rw *Writer) PushFrame(stack output.Tracer, fb *cga.Framebuffer) {
	rw.buf[0] = uint8(output.KindFrame)
	rw.write(rw.buf[:1])
	rw.write(fb[:])
	if rw.next != nil {
		rw.next.PushFrame(stack, fb)
	}
}

func (rw *Writer) PushDelay(millis uint32) {
	rw.writeValue(output.KindDelay, millis)
	if rw.next != nil {
		rw.next.PushDelay(millis)
	}
}

func (rw *Writer) PushSpeakerTimestamp(ts uint32) {
	rw.writeValue(output.KindSpeaker, ts)
	if rw.next != nil {
		rw.next.PushSpeakerTimestamp(ts)
	}
}

// Err returns the first error that occurred while writing.
func (rw *Writer) Err() error {
	return rw.err
}

// Flush writes buffered records to the underlying writer.
func (rw *Writer) Flush() error {
	if rw.err != nil {
		return rw.err
	}
	rw.err = rw.w.Flush()
	return rw.err
}

func (rw *Writer) Close() error {
	if err := rw.w.Close(); err != nil && rw.err == nil {
		rw.err = err
	}
	if rw.closer != nil {
		if err := rw.closer.Close(); err != nil && rw.err == nil {
			rw.err = err
		}
	}
	return rw.err
}
