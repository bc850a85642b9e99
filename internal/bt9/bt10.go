package bt9

import (
	"encoding/binary"
	"fmt"
	"io"

	"branchsim/internal/simerr"
)

// bt10Decoder decodes the compact variable-length edge-id stream appended
// after the ASCII edge table:
//
//	rec := byte<255>      -- one-byte edge id in [0,254]
//	     | 0xFF u32le      -- four-byte extended; zero value = EOF
//
// Partial records that straddle an underlying Read are carried in pending
// across calls to fill.
type bt10Decoder struct {
	r        io.Reader
	numEdges int
	pending  []byte
	srcEOF   bool
	eof      bool
	readBuf  []byte
}

func newBT10Decoder(r io.Reader, numEdges int) *bt10Decoder {
	return &bt10Decoder{r: r, numEdges: numEdges, readBuf: make([]byte, 4096)}
}

// fill decodes up to len(dst) edge ids into dst. It returns the number
// written and whether the EOF sentinel was observed during this call.
func (d *bt10Decoder) fill(dst []uint32) (int, bool, error) {
	if d.eof {
		return 0, true, nil
	}

	n := 0
	for n < len(dst) {
		for len(d.pending) < 5 && !d.srcEOF {
			m, err := d.r.Read(d.readBuf)
			if m > 0 {
				d.pending = append(d.pending, d.readBuf[:m]...)
			}
			if err != nil {
				if err == io.EOF {
					d.srcEOF = true
					break
				}
				return n, false, simerr.Wrap(simerr.SevError, simerr.KindIoError, "reading BT10 sequence", err)
			}
		}

		if len(d.pending) == 0 {
			return n, false, simerr.New(simerr.SevError, simerr.KindDecompressTruncated, "BT10 sequence ended without EOF sentinel")
		}

		tag := d.pending[0]
		if tag != 0xFF {
			if int(tag) >= d.numEdges {
				return n, false, simerr.New(simerr.SevError, simerr.KindInvalidEdgeIndex, fmt.Sprintf("edge id %d out of range [0,%d)", tag, d.numEdges))
			}
			dst[n] = uint32(tag)
			d.pending = d.pending[1:]
			n++
			continue
		}

		if len(d.pending) < 5 {
			return n, false, simerr.New(simerr.SevError, simerr.KindDecompressTruncated, "BT10 extended record truncated")
		}

		id := binary.LittleEndian.Uint32(d.pending[1:5])
		d.pending = d.pending[5:]
		if id == 0 {
			d.eof = true
			return n, true, nil
		}
		if int(id) >= d.numEdges {
			return n, false, simerr.New(simerr.SevError, simerr.KindInvalidEdgeIndex, fmt.Sprintf("edge id %d out of range [0,%d)", id, d.numEdges))
		}
		dst[n] = id
		n++
	}
	return n, false, nil
}
