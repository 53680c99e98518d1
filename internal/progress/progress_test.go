package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestTrackerSteps(t *testing.T) {
	var buf bytes.Buffer
	tracker := New(&buf, 3)

	tracker.Step("a.png")
	tracker.Step("b.psd")
	tracker.Finish()

	out := buf.String()
	if !strings.Contains(out, "[1/3] a.png") {
		t.Errorf("Missing first step line in %q", out)
	}
	if !strings.Contains(out, "[2/3] b.psd") {
		t.Errorf("Missing second step line in %q", out)
	}
	if !strings.Contains(out, "Done: 2 files") {
		t.Errorf("Missing summary line in %q", out)
	}
}

func TestTrackerEmptyRun(t *testing.T) {
	var buf bytes.Buffer
	tracker := New(&buf, 0)
	tracker.Finish()

	if !strings.Contains(buf.String(), "Done: 0 files") {
		t.Errorf("Unexpected summary: %q", buf.String())
	}
}
