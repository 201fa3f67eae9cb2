// Package screen shows the converted CGA frames in an OpenGL window.
package screen

import (
	"fmt"
	"slices"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/veandco/go-sdl2/sdl"

	"rewired/emu/log"
	"rewired/emu/output"
	"rewired/hw/cga"
)

type Config struct {
	Title        string
	Scale        int
	Monitor      int32
	DisableVSync bool
	Shader       string
}

// Window is a video sink presenting each frame as soon as it's received.
//
// All SDL and OpenGL calls are made through sdl.Do, the caller must be
// running inside sdl.Main.
type Window struct {
	win     *sdl.Window
	context sdl.GLContext
	prog    uint32
	texture uint32
	vao     uint32

	frames int
}

var _ output.VideoSink = (*Window)(nil)

func New(cfg Config) (*Window, error) {
	if cfg.Scale <= 0 {
		cfg.Scale = 1
	}
	if !slices.Contains(Shaders(), cfg.Shader) {
		if cfg.Shader != "" {
			log.ModVideo.Warnf("Invalid shader name %q, fallback to %q", cfg.Shader, DefaultShader)
		}
		cfg.Shader = DefaultShader
	}

	type result struct {
		w   *Window
		err error
	}
	resc := make(chan result, 1)
	sdl.Do(func() {
		w, err := newWindow(cfg)
		resc <- result{w, err}
	})
	res := <-resc
	if res.err != nil {
		return nil, res.err
	}

	log.ModVideo.InfoZ("Window created").
		Int("scale", cfg.Scale).
		Int("monitor", int(cfg.Monitor)).
		String("shader", cfg.Shader).
		Bool("vsync", !cfg.DisableVSync).
		End()
	return res.w, nil
}

func newWindow(cfg Config) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("failed to initialize SDL: %s", err)
	}

	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 3)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 3)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)

	winw := int32(cga.Width * cfg.Scale)
	winh := int32(cga.Height * cfg.Scale)

	// Center on the requested display.
	x, y := int32(sdl.WINDOWPOS_CENTERED), int32(sdl.WINDOWPOS_CENTERED)
	if bounds, err := sdl.GetDisplayBounds(int(cfg.Monitor)); err == nil {
		x = bounds.X + (bounds.W-winw)/2
		y = bounds.Y + (bounds.H-winh)/2
	} else {
		log.ModVideo.WarnZ("Can't get display bounds").Int("monitor", int(cfg.Monitor)).Error("err", err).End()
	}

	w, err := sdl.CreateWindow(cfg.Title, x, y, winw, winh,
		sdl.WINDOW_OPENGL|sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %s", err)
	}

	context, err := w.GLCreateContext()
	if err != nil {
		w.Destroy()
		return nil, fmt.Errorf("failed to create OpenGL context: %s", err)
	}

	if err := gl.Init(); err != nil {
		sdl.GLDeleteContext(context)
		w.Destroy()
		return nil, fmt.Errorf("failed to initialize opengl: %s", err)
	}

	interval := 1
	if cfg.DisableVSync {
		interval = 0
	}
	if err := sdl.GLSetSwapInterval(interval); err != nil {
		log.ModVideo.WarnZ("Can't set swap interval").Error("err", err).End()
	}

	// Texture at CGA resolution, upscaled without filtering.
	tbuf := make([]byte, cga.PixelsSize)

	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D, texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, cga.Width, cga.Height, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&tbuf[0]))

	prog, err := buildProgram(cfg.Shader)
	if err != nil {
		sdl.GLDeleteContext(context)
		w.Destroy()
		return nil, err
	}

	var VBO, VAO, EBO uint32
	gl.GenVertexArrays(1, &VAO)
	gl.GenBuffers(1, &VBO)
	gl.GenBuffers(1, &EBO)

	gl.BindVertexArray(VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, EBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)

	// Position attributes
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 5*4, 0)
	gl.EnableVertexAttribArray(0)

	// Texture coordinate attributes.
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, 5*4, 3*4)
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	return &Window{
		win:     w,
		context: context,
		prog:    prog,
		texture: texture,
		vao:     VAO,
	}, nil
}

// PresentFrame uploads pix, which must hold cga.Width*cga.Height RGBA
// pixels, and shows it.
func (w *Window) PresentFrame(pix []byte) {
	sdl.Do(func() {
		gl.BindTexture(gl.TEXTURE_2D, w.texture)
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, cga.Width, cga.Height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&pix[0]))
		w.draw()
	})
	w.frames++
}

func (w *Window) draw() {
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.UseProgram(w.prog)
	gl.BindTexture(gl.TEXTURE_2D, w.texture)
	gl.BindVertexArray(w.vao)
	gl.DrawElements(gl.TRIANGLES, 6, gl.UNSIGNED_INT, nil)
	w.win.GLSwap()
}

// Poll processes pending window events. It returns false once the user asked
// to quit, either by closing the window or pressing Escape.
func (w *Window) Poll() bool {
	running := true
	sdl.Do(func() {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				running = false
			case *sdl.KeyboardEvent:
				if e.Type == sdl.KEYDOWN && e.Keysym.Sym == sdl.K_ESCAPE {
					running = false
				}
			case *sdl.WindowEvent:
				switch e.Event {
				case sdl.WINDOWEVENT_RESIZED:
					gl.Viewport(0, 0, e.Data1, e.Data2)
					w.draw()
				case sdl.WINDOWEVENT_EXPOSED:
					w.draw()
				}
			}
		}
	})
	return running
}

// Frames returns the number of frames presented so far.
func (w *Window) Frames() int {
	return w.frames
}

func (w *Window) Close() error {
	errc := make(chan error, 1)
	sdl.Do(func() {
		if w.context != nil {
			sdl.GLDeleteContext(w.context)
		}
		err := w.win.Destroy()
		sdl.Quit()
		errc <- err
	})
	return <-errc
}
