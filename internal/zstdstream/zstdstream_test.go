package zstdstream

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func compress(t *testing.T, payload []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("zstd.NewWriter: %v", err)
	}
	if _, err := w.Write(payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

func TestRoundTrip(t *testing.T) {
	payload := []byte("BT9_SPA_TRACE_FORMAT\nbt9_minor_version: 0\nBT9_NODES\n")
	compressed := compress(t, payload)

	s, err := Open(bytes.NewReader(compressed))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	got, err := io.ReadAll(s.Reader())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("round trip = %q, want %q", got, payload)
	}
}

func TestMultiFrameConcatenation(t *testing.T) {
	a := compress(t, []byte("frame one\n"))
	b := compress(t, []byte("frame two\n"))
	s, err := Open(bytes.NewReader(append(a, b...)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	got, err := io.ReadAll(s.Reader())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	want := "frame one\nframe two\n"
	if string(got) != want {
		t.Errorf("concatenated frames = %q, want %q", got, want)
	}
}

func TestEmptyInput(t *testing.T) {
	_, err := Open(bytes.NewReader(nil))
	if err == nil {
		t.Fatal("Open on empty input: want error, got nil")
	}
}

func TestTruncatedStream(t *testing.T) {
	compressed := compress(t, []byte("BT9_SPA_TRACE_FORMAT\n"))
	truncated := compressed[:len(compressed)-4]

	s, err := Open(bytes.NewReader(truncated))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	_, err = io.ReadAll(s.Reader())
	if err == nil {
		t.Fatal("ReadAll on truncated stream: want error, got nil")
	}
}
