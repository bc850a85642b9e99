// Package zstdstream turns a zstd-compressed file into a demand-driven
// sequence of decompressed byte chunks. It plays the role of the trace
// library's pull-style decompression coroutine: the caller drives
// consumption one Poll at a time instead of the decoder pushing output on
// its own schedule.
package zstdstream

import (
	"bufio"
	"io"

	"github.com/klauspost/compress/zstd"

	"branchsim/internal/simerr"
)

const (
	inChunkSize  = 1 << 16
	outChunkSize = 1 << 16
)

// Stream is the explicit state object spec.md §9 calls for in place of a
// first-class coroutine: input scratch (the bufio.Reader), output scratch
// (buf), and the decoder context (dec).
type Stream struct {
	raw    *bufio.Reader
	dec    *zstd.Decoder
	buf    []byte
	closed bool
}

// Open wraps r in a streaming zstd decompressor. It fails fast with
// KindDecompressEmpty if the underlying file has no bytes at all.
func Open(r io.Reader) (*Stream, error) {
	br := bufio.NewReaderSize(r, inChunkSize)

	if _, err := br.Peek(1); err != nil {
		if err == io.EOF {
			return nil, simerr.New(simerr.SevError, simerr.KindDecompressEmpty, "input file is empty")
		}
		return nil, simerr.Wrap(simerr.SevError, simerr.KindIoError, "reading input file", err)
	}

	dec, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, simerr.Wrap(simerr.SevError, simerr.KindDecompressCorrupt, "initializing zstd decoder", err)
	}

	return &Stream{raw: br, dec: dec, buf: make([]byte, outChunkSize)}, nil
}

// Poll pulls the next chunk of decompressed bytes. A nil chunk with a nil
// error means the stream is exhausted cleanly. Multiple concatenated zstd
// frames are handled transparently by the underlying decoder.
func (s *Stream) Poll() ([]byte, error) {
	if s.closed {
		return nil, nil
	}

	n, err := s.dec.Read(s.buf)
	if n > 0 {
		chunk := make([]byte, n)
		copy(chunk, s.buf[:n])
		if err != nil && err != io.EOF {
			s.closed = true
			return chunk, classifyErr(err)
		}
		if err == io.EOF {
			s.closed = true
		}
		return chunk, nil
	}

	if err == nil {
		return nil, nil
	}
	s.closed = true
	if err == io.EOF {
		return nil, nil
	}
	return nil, classifyErr(err)
}

func classifyErr(err error) error {
	if err == io.ErrUnexpectedEOF {
		return simerr.Wrap(simerr.SevError, simerr.KindDecompressTruncated, "zstd stream ended mid-frame", err)
	}
	return simerr.Wrap(simerr.SevError, simerr.KindDecompressCorrupt, "decoding zstd stream", err)
}

// Close releases the decoder context.
func (s *Stream) Close() {
	s.dec.Close()
}

// Reader adapts the Stream to io.Reader so the line-oriented BT9 parser can
// drive it with ordinary buffered reads without knowing about Poll.
func (s *Stream) Reader() io.Reader {
	return &pollReader{s: s}
}

type pollReader struct {
	s   *Stream
	buf []byte
}

func (p *pollReader) Read(dst []byte) (int, error) {
	for len(p.buf) == 0 {
		chunk, err := p.s.Poll()
		if err != nil {
			return 0, err
		}
		if chunk == nil {
			return 0, io.EOF
		}
		p.buf = chunk
	}
	n := copy(dst, p.buf)
	p.buf = p.buf[n:]
	return n, nil
}
