package bt9

import (
	"os"

	"branchsim/common"
	"branchsim/internal/simerr"
	"branchsim/internal/zstdstream"
)

// edgeSeqBufferSize is the sliding window's fixed capacity (in decoded edge
// ids). Chosen large enough to amortize refill calls while keeping the
// reader's working set bounded regardless of trace length.
const edgeSeqBufferSize = 4096

// Reader is the single-pass, forward-only branch-instance source. It folds
// the iterator's cursor state (read_ptr/write_ptr) into itself rather than
// holding a cyclic back-pointer pair, per spec.md §9's "cyclic references"
// design note.
type Reader struct {
	file   *os.File
	stream *zstdstream.Stream
	logger common.Logger

	header Header
	nodes  []NodeRecord
	edges  []EdgeRecord

	bt10 *bt10Decoder

	ring       [edgeSeqBufferSize]uint32
	readPtr    int
	writePtr   int
	decoderEOF bool

	instance BranchInstance
}

// Open parses the header and both tables eagerly, then leaves the decoder
// positioned at the start of the binary edge-id sequence for lazy, bounded-
// memory iteration via Next.
func Open(path string, logger common.Logger) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, simerr.Wrap(simerr.SevError, simerr.KindIoError, "opening trace file", err)
	}

	stream, err := zstdstream.Open(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	lr := newLineReader(stream.Reader())

	header, err := parseHeader(lr)
	if err != nil {
		stream.Close()
		f.Close()
		return nil, err
	}

	nodes, err := parseNodeTable(lr, logger)
	if err != nil {
		stream.Close()
		f.Close()
		return nil, err
	}

	edgeResult, err := parseEdgeTable(lr, nodes, logger)
	if err != nil {
		stream.Close()
		f.Close()
		return nil, err
	}

	r := &Reader{
		file:   f,
		stream: stream,
		logger: logger,
		header: header,
		nodes:  nodes,
		edges:  edgeResult.edges,
		bt10:   newBT10Decoder(lr.br, len(edgeResult.edges)),
	}
	return r, nil
}

// Header returns the parsed header.
func (r *Reader) Header() Header { return r.header }

// NumNodes and NumEdges report the dense table sizes, for callers that want
// to size derived structures without touching the tables directly.
func (r *Reader) NumNodes() int { return len(r.nodes) }
func (r *Reader) NumEdges() int { return len(r.edges) }

// Close releases the decoder and file handle.
func (r *Reader) Close() {
	r.stream.Close()
	r.file.Close()
}

func (r *Reader) refill() error {
	remaining := copy(r.ring[:], r.ring[r.readPtr:r.writePtr])
	r.writePtr = remaining
	r.readPtr = 0
	if r.decoderEOF {
		return nil
	}

	n, eof, err := r.bt10.fill(r.ring[r.writePtr:])
	r.writePtr += n
	if eof {
		r.decoderEOF = true
	}
	return err
}

// Next advances the cursor and returns the freshly populated branch
// instance. The returned pointer is invalidated by the next call to Next:
// the iterator is single-pass and non-restartable. ok is false once the
// trace is exhausted, with err nil on a clean end of stream.
func (r *Reader) Next() (inst *BranchInstance, ok bool, err error) {
	if r.readPtr == r.writePtr {
		if r.decoderEOF {
			return nil, false, nil
		}
		if err := r.refill(); err != nil {
			return nil, false, err
		}
		if r.readPtr == r.writePtr {
			return nil, false, nil
		}
	}

	edgeID := r.ring[r.readPtr]
	r.readPtr++

	edge := &r.edges[edgeID]
	src := &r.nodes[edge.SrcID]
	dst := &r.nodes[edge.DstID]

	r.instance = BranchInstance{Src: src, Dst: dst, Edge: edge, Valid: true}
	return &r.instance, true, nil
}
