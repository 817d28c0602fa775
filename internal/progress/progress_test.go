package progress

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestTracker_Analyzer(t *testing.T) {
	var buf bytes.Buffer
	tr := newTracker("Parsing", 0, &buf)

	at := tr.Analyzer()
	at.Add(3)
	at.Tick("A.cs")
	at.Tick("B.cs")

	if got := tr.bar.GetMax(); got != 3 {
		t.Errorf("bar max = %d, want 3", got)
	}
	if got := tr.bar.State().CurrentNum; got != 2 {
		t.Errorf("bar current = %d, want 2", got)
	}
}

func TestTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	tr := newTracker("Parsing", 2, &buf)
	tr.Tick()
	tr.FinishSkipped("no files")
	if !strings.Contains(buf.String(), "Parsing skipped (no files)") {
		t.Errorf("output = %q", buf.String())
	}

	buf.Reset()
	tr = newSpinner("Scanning", &buf)
	tr.FinishError(errors.New("boom"))
	if !strings.Contains(buf.String(), "Scanning error: boom") {
		t.Errorf("output = %q", buf.String())
	}
}
