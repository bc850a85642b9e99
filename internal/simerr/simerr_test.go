package simerr

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorFormatsKindAndLocation(t *testing.T) {
	e := NewAtLine(SevError, KindInvalidReference, 42, "dst_id 7 not yet seen")
	got := e.Error()
	for _, want := range []string{"ERROR:", "INVALID_REFERENCE", "line=42", "dst_id 7 not yet seen"} {
		if !strings.Contains(got, want) {
			t.Errorf("Error() = %q, want substring %q", got, want)
		}
	}
}

func TestWarnSeverity(t *testing.T) {
	e := New(SevWarn, KindNone, "duplicate node 3")
	if !strings.HasPrefix(e.Error(), "WARN :") {
		t.Errorf("Error() = %q, want WARN prefix", e.Error())
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("boom")
	e := Wrap(SevError, KindIoError, "reading trace", cause)
	if !errors.Is(e, cause) {
		t.Errorf("errors.Is(e, cause) = false, want true")
	}
	if !strings.Contains(e.Error(), "boom") {
		t.Errorf("Error() = %q, want to contain underlying cause", e.Error())
	}
}
