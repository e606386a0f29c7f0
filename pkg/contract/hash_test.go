package contract

import (
	"strings"
	"testing"
)

func TestHashContent(t *testing.T) {
	a := HashContent([]byte("limit : 5;"))
	b := HashContent([]byte("limit : 5;"))
	c := HashContent([]byte("limit : 6;"))

	if a != b {
		t.Error("identical content should hash identically")
	}
	if a == c {
		t.Error("different content should hash differently")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}

func TestHashContentEmpty(t *testing.T) {
	if got := HashContent(nil); got != "" {
		t.Errorf("HashContent(nil) = %q, want empty", got)
	}
	if got := HashString(""); got != "" {
		t.Errorf("HashString(\"\") = %q, want empty", got)
	}
}

func TestHashContentTruncates(t *testing.T) {
	base := []byte(strings.Repeat("x", MaxHashSize))
	extended := append(append([]byte{}, base...), []byte("trailing")...)

	if HashContent(base) != HashContent(extended) {
		t.Error("bytes past the cap should not change the hash")
	}
}

func TestHashLines(t *testing.T) {
	lines := []string{
		"a : 1;",
		"b : 2;",
		"c : 3;",
		"d : 4;",
	}

	span := HashLines(lines, 2, 3)
	if want := HashString("b : 2;\nc : 3;"); span != want {
		t.Errorf("HashLines(2, 3) = %.12s, want %.12s", span, want)
	}

	if HashLines(lines, 1, 1) != HashString("a : 1;") {
		t.Error("single-line span should hash that line alone")
	}
}

func TestHashLinesClamps(t *testing.T) {
	lines := []string{"only : 1;"}

	if HashLines(lines, -3, 10) != HashString("only : 1;") {
		t.Error("out-of-range span should clamp to the file")
	}
	if got := HashLines(lines, 2, 1); got != "" {
		t.Errorf("inverted span = %q, want empty", got)
	}
	if got := HashLines(nil, 1, 1); got != "" {
		t.Errorf("empty file span = %q, want empty", got)
	}
}

func TestStatusExposable(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusTestedPass, true},
		{StatusForceExposed, true},
		{StatusUntested, false},
		{StatusTestedFail, false},
	}
	for _, tt := range tests {
		if got := tt.status.Exposable(); got != tt.want {
			t.Errorf("%s.Exposable() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestErrorStrings(t *testing.T) {
	mismatch := &MismatchError{
		Module: "validators",
		Symbol: "check_port",
		Stored: "aaaaaaaaaaaaaaaa",
		Actual: "bbbbbbbbbbbbbbbb",
	}
	if got := mismatch.Error(); !strings.Contains(got, "validators.check_port") ||
		!strings.Contains(got, "aaaaaaaaaaaa") {
		t.Errorf("MismatchError = %q", got)
	}

	unexposed := &UnexposedSymbolError{Module: "validators", Symbol: "helper", Status: StatusUntested}
	if got := unexposed.Error(); !strings.Contains(got, "validators.helper") ||
		!strings.Contains(got, string(StatusUntested)) {
		t.Errorf("UnexposedSymbolError = %q", got)
	}
}
