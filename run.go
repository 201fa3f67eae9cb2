package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/jx"
	"github.com/veandco/go-sdl2/sdl"

	"rewired/emu"
	"rewired/emu/demo"
	"rewired/emu/log"
	"rewired/emu/output"
	"rewired/emu/player"
	"rewired/emu/record"
	"rewired/emu/rpc"
	"rewired/hw/capture"
	"rewired/hw/screen"
)

// newSource creates the producing side once the queue exists.
type newSource func(q *output.Queue) (player.Source, error)

// Functions to call before the process exits on a fatal error.
var atExit []func()

func newQueue(cfg emu.Config, video output.VideoSink) *output.Queue {
	return output.NewQueue(output.Config{
		Palette:      cfg.Palette,
		FrameCeiling: cfg.Output.FrameCeiling,
		Video:        video,
		Abort: func(msg, trace string) {
			runAtExit()
			log.ModOutput.FatalZ(msg).String("trace", trace).End()
		},
	})
}

// play runs src in a window until it's exhausted or the user quits.
func play(cfg emu.Config, port int, mksrc newSource) int {
	var exitcode int
	sdl.Main(func() {
		win, err := screen.New(screen.Config{
			Title:        "Rewired",
			Scale:        cfg.Video.Scale,
			Monitor:      cfg.Video.Monitor,
			DisableVSync: cfg.Video.DisableVSync,
			Shader:       cfg.Video.Shader,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open window: %v\n", err)
			exitcode = 1
			return
		}
		defer win.Close()

		q := newQueue(cfg, win)
		src, err := mksrc(q)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
			exitcode = 1
			return
		}

		p := player.New(q, src, player.Config{Poll: win.Poll})
		stopOnInterrupt(p)
		if port != 0 {
			server, err := rpc.NewServer(port, p)
			if err != nil {
				fmt.Fprintf(os.Stderr, "RPC error: %v\n", err)
				exitcode = 1
				return
			}
			defer server.Close()
		}
		if err := p.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "playback error: %v\n", err)
			exitcode = 1
		}
	})
	return exitcode
}

// headless runs src as fast as possible, without waiting the delays.
func headless(cfg emu.Config, video output.VideoSink, port int, mksrc newSource) error {
	q := newQueue(cfg, video)
	src, err := mksrc(q)
	if err != nil {
		return err
	}

	p := player.New(q, src, player.Config{Sleep: func(time.Duration) {}})
	stopOnInterrupt(p)
	if port != 0 {
		server, err := rpc.NewServer(port, p)
		if err != nil {
			return err
		}
		defer server.Close()
	}
	return p.Run()
}

func stopOnInterrupt(p *player.Player) {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	go func() {
		<-sigc
		log.ModEmu.WarnZ("Interrupted").End()
		p.Stop()
	}()
}

func replay(path string) newSource {
	return func(*output.Queue) (player.Source, error) {
		rr, err := record.Open(path)
		if err != nil {
			return nil, err
		}
		atExit = append(atExit, func() { rr.Close() })
		return player.Recording(rr, nil), nil
	}
}

func playMain(args Play, cfg emu.Config) int {
	if args.Monitor >= 0 {
		cfg.Video.Monitor = args.Monitor
	}
	if args.Scale > 0 {
		cfg.Video.Scale = args.Scale
	}
	cfg.Check()

	defer runAtExit()
	return play(cfg, args.Port, replay(args.Recording))
}

func exportMain(w io.Writer, args Export, cfg emu.Config) error {
	defer runAtExit()

	sink, err := capture.NewPNGSink(args.Out, args.Every)
	if err != nil {
		return err
	}
	err = headless(cfg, sink, 0, replay(args.Recording))
	if cerr := sink.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "frames exported to %s\n", args.Out)
	return nil
}

func infoMain(w io.Writer, path string) error {
	rr, err := record.Open(path)
	if err != nil {
		return err
	}
	defer rr.Close()

	s, err := record.Summarize(rr)
	if err != nil {
		return err
	}

	var e jx.Encoder
	s.Encode(&e)
	if _, err := w.Write(e.Bytes()); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}

func demoMain(args Demo, cfg emu.Config) int {
	defer runAtExit()

	prog := demo.New(demo.Config{
		Frames:     args.Frames,
		FrameDelay: args.Delay,
		Stuck:      args.Stuck,
	})

	mksrc := func(q *output.Queue) (player.Source, error) {
		if args.Record == "" {
			return prog, nil
		}
		rw, err := record.Create(args.Record, q)
		if err != nil {
			return nil, err
		}
		atExit = append(atExit, func() {
			if err := rw.Close(); err != nil {
				log.ModRecord.ErrorZ("Failed to write recording").String("path", args.Record).Error("err", err).End()
			}
		})
		return player.SourceFunc(func(output.Producer) error {
			return prog.Feed(rw)
		}), nil
	}

	if args.Headless {
		if err := headless(cfg, capture.Discard, args.Port, mksrc); err != nil {
			fmt.Fprintf(os.Stderr, "demo failed: %v\n", err)
			return 1
		}
		return 0
	}
	return play(cfg, args.Port, mksrc)
}

func ctlMain(w io.Writer, args Ctl) error {
	c, err := rpc.NewClient(args.Port)
	if err != nil {
		return err
	}
	defer c.Close()

	switch args.Action {
	case "pause":
		return c.SetPause(true)
	case "resume":
		return c.SetPause(false)
	case "stop":
		return c.Stop()
	}

	stats, err := c.Stats()
	if err != nil {
		return err
	}
	var e jx.Encoder
	encodeStats(&e, stats)
	if _, err := w.Write(e.Bytes()); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}

func encodeStats(e *jx.Encoder, s output.Stats) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("frames_in", func(e *jx.Encoder) { e.UInt64(s.FramesIn) })
		e.Field("frames_out", func(e *jx.Encoder) { e.UInt64(s.FramesOut) })
		e.Field("delay_in_ms", func(e *jx.Encoder) { e.UInt64(s.DelayIn) })
		e.Field("delay_out_ms", func(e *jx.Encoder) { e.UInt64(s.DelayOut) })
		e.Field("speaker_timestamps", func(e *jx.Encoder) { e.UInt64(s.SpeakerTimestamps) })
		e.Field("depth", func(e *jx.Encoder) { e.Int(s.Depth) })
		e.Field("queued_frames", func(e *jx.Encoder) { e.Int(s.QueuedFrames) })
		e.Field("pending_ms", func(e *jx.Encoder) { e.UInt64(s.PendingDelay) })
	})
}

func runAtExit() {
	for _, f := range atExit {
		f()
	}
	atExit = nil
}
