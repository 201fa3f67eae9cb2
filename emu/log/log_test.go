package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/Sirupsen/logrus.v0"
)

// capture redirects logrus to a buffer for the duration of the test and
// returns a function decoding the captured JSON lines.
func capture(t *testing.T) func() []map[string]any {
	t.Helper()

	var buf bytes.Buffer
	std := logrus.StandardLogger()
	prevOut, prevFmt := std.Out, std.Formatter
	prevMask, prevDisabled := modDebugMask, disabled

	logrus.SetOutput(&buf)
	logrus.SetFormatter(&logrus.JSONFormatter{})
	t.Cleanup(func() {
		logrus.SetOutput(prevOut)
		logrus.SetFormatter(prevFmt)
		modDebugMask, disabled = prevMask, prevDisabled
	})

	return func() []map[string]any {
		var lines []map[string]any
		dec := json.NewDecoder(&buf)
		for dec.More() {
			m := make(map[string]any)
			if err := dec.Decode(&m); err != nil {
				t.Fatalf("can't decode log output: %v", err)
			}
			delete(m, "time")
			lines = append(lines, m)
		}
		return lines
	}
}

type testContext struct{ frames int }

func (c *testContext) AddLogContext(z *EntryZ) {
	z.Int("ctx_frames", c.frames)
}

func TestEntryZ(t *testing.T) {
	lines := capture(t)

	ModOutput.WarnZ("queue deep").
		Int("frames", 42).
		Uint("ms", 7).
		Hex8("kind", 0x1).
		Hex16("seg", 0xb800).
		Bool("ok", true).
		Error("err", errors.New("boom")).
		Duration("wait", 100*time.Millisecond).
		End()

	want := []map[string]any{{
		"level":  "warning",
		"msg":    "queue deep",
		"_mod":   "output",
		"frames": "42",
		"ms":     "7",
		"kind":   "01",
		"seg":    "b800",
		"ok":     "true",
		"err":    "boom",
		"wait":   "100ms",
	}}
	if diff := cmp.Diff(want, lines()); diff != "" {
		t.Fatalf("log output (-want +got):\n%s", diff)
	}
}

func TestDebugModules(t *testing.T) {
	lines := capture(t)

	DisableDebugModules(ModuleMaskAll)
	ModVideo.DebugZ("hidden").Int("n", 1).End()
	ModVideo.Debugf("hidden %d", 2)

	EnableDebugModules(ModVideo.Mask())
	ModVideo.DebugZ("shown").End()
	ModSound.DebugZ("hidden").End()
	ModSound.Warnf("warn %d", 3)

	got := lines()
	if len(got) != 2 || got[0]["msg"] != "shown" || got[1]["msg"] != "warn 3" {
		t.Fatalf("unexpected log lines: %v", got)
	}
}

func TestDisable(t *testing.T) {
	lines := capture(t)

	Disable()
	if e := ModEmu.ErrorZ("nope"); e != nil {
		t.Fatalf("ErrorZ on disabled logging returned an entry")
	}
	// A nil entry chain must be safe.
	ModEmu.WarnZ("nope").String("a", "b").Int("c", 1).End()

	if !ModEmu.Enabled(FatalLevel) {
		t.Errorf("fatal level disabled")
	}
	if got := lines(); len(got) != 0 {
		t.Fatalf("disabled logging wrote %v", got)
	}
}

func TestLogContext(t *testing.T) {
	lines := capture(t)

	ctx := &testContext{frames: 3}
	AddContext(ctx)
	ModRecord.InfoZ("with context").End()
	RemoveContext(ctx)
	ModRecord.InfoZ("without context").End()

	got := lines()
	if len(got) != 2 {
		t.Fatalf("got %d lines, want 2", len(got))
	}
	if got[0]["ctx_frames"] != "3" {
		t.Errorf("context field missing: %v", got[0])
	}
	if _, ok := got[1]["ctx_frames"]; ok {
		t.Errorf("context field still present after removal: %v", got[1])
	}
}

func TestModuleByName(t *testing.T) {
	for _, name := range ModuleNames() {
		mod, ok := ModuleByName(name)
		if !ok {
			t.Fatalf("ModuleByName(%q) failed", name)
		}
		if mod.String() != name {
			t.Errorf("ModuleByName(%q).String() = %q", name, mod.String())
		}
	}

	if _, ok := ModuleByName("<error>"); ok {
		t.Errorf("ModuleByName matched the placeholder name")
	}
	if _, ok := ModuleByName("nes"); ok {
		t.Errorf("ModuleByName matched an unknown name")
	}
}
