package bt9

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	"branchsim/common"
)

func writeCompressedTrace(t *testing.T, text string, binary []byte) string {
	t.Helper()
	var plain bytes.Buffer
	plain.WriteString(text)
	plain.Write(binary)

	var compressed bytes.Buffer
	w, err := zstd.NewWriter(&compressed)
	if err != nil {
		t.Fatalf("zstd.NewWriter: %v", err)
	}
	if _, err := w.Write(plain.Bytes()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.CreateTemp(t.TempDir(), "trace-*.bt9")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	if _, err := f.Write(compressed.Bytes()); err != nil {
		t.Fatalf("Write temp: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close temp: %v", err)
	}
	return f.Name()
}

const headerAndTables = "BT9_SPA_TRACE_FORMAT\n" +
	"bt9_minor_version: 0\n" +
	"total_instruction_count: 5000\n" +
	"branch_instruction_count: 2\n" +
	"BT9_NODES\n" +
	"NODE 0 0x0 - 0x0 0 class: JMP_DIRECT behavior: UNCONDITIONAL\n" +
	"NODE 1 0x1000 - 0x90 4 class: JMP_DIRECT behavior: CONDITIONAL\n" +
	"NODE 2 0x2000 - 0x90 4 class: JMP_DIRECT behavior: UNKNOWN\n" +
	"BT9_EDGES\n" +
	"EDGE 0 1 2 T 0x2000 - 1\n" +
	"BT10_SMALL_INDEX_SIZE_8\n" +
	"BT10_BIG_INDEX_SIZE_32\n"

func TestReaderProducesBranchInstances(t *testing.T) {
	binSeq := append(encodeRecord(0), encodeRecord(0)...)
	binSeq = append(binSeq, eofSentinel()...)

	path := writeCompressedTrace(t, headerAndTables, binSeq)
	r, err := Open(path, common.NewNoOpLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if r.Header().TotalInstructionCount != 5000 {
		t.Errorf("TotalInstructionCount = %d, want 5000", r.Header().TotalInstructionCount)
	}

	count := 0
	for {
		inst, ok, err := r.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		if !inst.Valid || inst.Src.ID != 1 || inst.Dst.ID != 2 || !inst.Edge.Taken {
			t.Errorf("Next() = %+v, want src=1 dst=2 taken", inst)
		}
		count++
	}
	if count != 2 {
		t.Errorf("got %d instances, want 2", count)
	}
}

func TestReaderEOFMidRefill(t *testing.T) {
	n := edgeSeqBufferSize + 3
	var binSeq []byte
	for i := 0; i < n; i++ {
		binSeq = append(binSeq, encodeRecord(0)...)
	}
	binSeq = append(binSeq, eofSentinel()...)

	path := writeCompressedTrace(t, headerAndTables, binSeq)
	r, err := Open(path, common.NewNoOpLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	count := 0
	for {
		_, ok, err := r.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		count++
	}
	if count != n {
		t.Errorf("got %d instances, want %d", count, n)
	}
}

func TestReaderSentinelOnlyTrace(t *testing.T) {
	text := strings.Replace(headerAndTables, "EDGE 0 1 2 T 0x2000 - 1\n", "", 1)
	path := writeCompressedTrace(t, text, eofSentinel())
	r, err := Open(path, common.NewNoOpLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	_, ok, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if ok {
		t.Error("Next() on sentinel-only trace: want no instances")
	}
}
