package cli

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestProgressRendersBar(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(4)
	progress.Update(2)
	progress.Finish()

	out := buf.String()
	if !strings.Contains(out, "Progress:") {
		t.Errorf("output missing bar prefix:\n%s", out)
	}
	if !strings.Contains(out, "(4/4)") {
		t.Errorf("Finish() should render the full count:\n%s", out)
	}
}

func TestProgressZeroTotalIsSilent(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(0)
	progress.Update(0)
	progress.Finish()

	if out := strings.TrimSpace(buf.String()); out != "" {
		t.Errorf("zero-total run produced output: %q", out)
	}
}

func TestProgressError(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(10)
	progress.Error(fmt.Errorf("suite crashed"))

	if out := buf.String(); !strings.Contains(out, "suite crashed") {
		t.Errorf("error output missing message:\n%s", out)
	}
}

func TestProgressConcurrentUpdates(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)
	progress.Start(100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				progress.Update(int64(n*10 + j))
			}
		}(i)
	}
	wg.Wait()
	progress.Finish()

	if buf.Len() == 0 {
		t.Error("expected progress output")
	}
}

func TestNewProgressReporterNilWriter(t *testing.T) {
	progress := NewProgressReporter(nil)
	if progress == nil {
		t.Fatal("NewProgressReporter(nil) returned nil")
	}
}
