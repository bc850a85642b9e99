package sim

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestWriteReportKeysByTraceStem(t *testing.T) {
	mp := 1.5
	stats := &Stats{Trace: "my_trace", MPKBr1K: &mp, NumInstructions: 100}

	var buf bytes.Buffer
	if err := WriteReport(&buf, stats); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	var decoded map[string]Stats
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	got, ok := decoded["my_trace"]
	if !ok {
		t.Fatalf("report missing key %q: %s", "my_trace", buf.String())
	}
	if got.NumInstructions != 100 {
		t.Errorf("NumInstructions = %d, want 100", got.NumInstructions)
	}
	if got.MPKBr1K == nil || *got.MPKBr1K != 1.5 {
		t.Errorf("MPKBr1K = %v, want 1.5", got.MPKBr1K)
	}
}
