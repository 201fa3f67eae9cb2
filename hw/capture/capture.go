// Package capture provides headless video sinks.
package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"rewired/emu/log"
	"rewired/emu/output"
	"rewired/hw/cga"
)

// Discard is a video sink dropping every frame.
var Discard output.VideoSink = discard{}

type discard struct{}

func (discard) PresentFrame([]byte) {}

// PNGSink saves presented frames as PNG files. Encoding happens on a pool
// of goroutines, PresentFrame only blocks when all of them are busy.
type PNGSink struct {
	dir   string
	every int

	n     int // frames presented so far
	saved int
	g     errgroup.Group
}

var _ output.VideoSink = (*PNGSink)(nil)

// NewPNGSink creates dir if needed and returns a sink saving one frame out of
// every into it. every <= 1 saves all frames.
func NewPNGSink(dir string, every int) (*PNGSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	s := &PNGSink{dir: dir, every: max(every, 1)}
	s.g.SetLimit(runtime.NumCPU())
	return s, nil
}

func (s *PNGSink) PresentFrame(pix []byte) {
	n := s.n
	s.n++
	if n%s.every != 0 {
		return
	}

	// pix is only valid during the call.
	img := cga.CopyImage(pix)
	path := filepath.Join(s.dir, fmt.Sprintf("frame-%06d.png", n))
	s.saved++
	s.g.Go(func() error {
		return cga.SaveAsPNG(img, path)
	})
}

// Close waits for pending frames to be written and returns the first error
// that occurred.
func (s *PNGSink) Close() error {
	err := s.g.Wait()
	if err != nil {
		log.ModVideo.ErrorZ("Frame capture failed").Error("err", err).End()
		return err
	}
	log.ModVideo.InfoZ("Frame capture done").
		String("dir", s.dir).
		Int("presented", s.n).
		Int("saved", s.saved).
		End()
	return nil
}
