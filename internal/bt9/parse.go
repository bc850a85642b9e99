package bt9

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"branchsim/common"
	"branchsim/internal/simerr"
)

const (
	magicLine       = "BT9_SPA_TRACE_FORMAT"
	nodesMarker     = "BT9_NODES"
	edgesMarker     = "BT9_EDGES"
	smallIndexMark  = "BT10_SMALL_INDEX_SIZE_8"
	bigIndexMark    = "BT10_BIG_INDEX_SIZE_32"
)

// lineReader reads comment-stripped, trimmed lines while tracking line
// numbers so every parse failure can carry its location.
type lineReader struct {
	br      *bufio.Reader
	lineNum int
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{br: bufio.NewReaderSize(r, 1<<16)}
}

// next returns the next non-blank, comment-stripped line, or io.EOF.
func (lr *lineReader) next() (string, error) {
	for {
		raw, err := lr.br.ReadString('\n')
		if len(raw) == 0 && err != nil {
			return "", err
		}
		lr.lineNum++
		line := raw
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line != "" {
			return line, nil
		}
		if err != nil {
			return "", err
		}
	}
}

func parseUint(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(s), 0, 64)
}

func parseAddr(s string) (val uint64, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == "-" {
		return 0, false, nil
	}
	v, err := parseUint(s)
	return v, err == nil, err
}

// parseHeader reads phase H: the magic line, then key:value pairs until the
// BT9_NODES marker.
func parseHeader(lr *lineReader) (Header, error) {
	h := Header{Unclassified: make(map[string]string)}

	first, err := lr.next()
	if err != nil {
		return h, simerr.Wrap(simerr.SevError, simerr.KindIoError, "reading header", err)
	}
	if first != magicLine {
		return h, simerr.NewAtLine(simerr.SevError, simerr.KindNotBT9, lr.lineNum, "expected "+magicLine)
	}

	for {
		line, err := lr.next()
		if err != nil {
			return h, simerr.Wrap(simerr.SevError, simerr.KindMissingSection, "reached EOF before "+nodesMarker, err)
		}
		if line == nodesMarker {
			return h, nil
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return h, simerr.NewAtLine(simerr.SevError, simerr.KindHeaderFieldInvalid, lr.lineNum, "expected key: value, got "+line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "bt9_minor_version":
			v, err := parseUint(value)
			if err != nil {
				return h, simerr.NewAtLine(simerr.SevError, simerr.KindHeaderFieldInvalid, lr.lineNum, "bad bt9_minor_version "+value)
			}
			h.MinorVersion = v
		case "has_physical_address":
			h.HasPhysicalAddress = value == "1" || strings.EqualFold(value, "true")
		case "md5_checksum":
			h.MD5Checksum = value
		case "conversion_date":
			h.ConversionDate = value
		case "original_stf_input_file":
			h.OriginalSTFInputFile = value
		case "total_instruction_count":
			v, err := parseUint(value)
			if err != nil {
				return h, simerr.NewAtLine(simerr.SevError, simerr.KindHeaderFieldInvalid, lr.lineNum, "bad total_instruction_count "+value)
			}
			h.TotalInstructionCount = v
		case "branch_instruction_count":
			v, err := parseUint(value)
			if err != nil {
				return h, simerr.NewAtLine(simerr.SevError, simerr.KindHeaderFieldInvalid, lr.lineNum, "bad branch_instruction_count "+value)
			}
			h.BranchInstructionCount = v
		default:
			h.Unclassified[key] = value
		}
	}
}

func ensureLen(nodes []NodeRecord, id uint32) []NodeRecord {
	for uint32(len(nodes)) <= id {
		nodes = append(nodes, NodeRecord{})
	}
	return nodes
}

// parseNodeTable reads phase N: NODE lines until the BT9_EDGES marker.
func parseNodeTable(lr *lineReader, logger common.Logger) ([]NodeRecord, error) {
	var nodes []NodeRecord

	for {
		line, err := lr.next()
		if err != nil {
			return nodes, simerr.Wrap(simerr.SevError, simerr.KindMissingSection, "reached EOF before "+edgesMarker, err)
		}
		if line == edgesMarker {
			return nodes, nil
		}

		fields := strings.Fields(line)
		if len(fields) < 6 || fields[0] != "NODE" {
			return nodes, simerr.NewAtLine(simerr.SevError, simerr.KindNodeFieldInvalid, lr.lineNum, "malformed NODE line: "+line)
		}

		id64, err := parseUint(fields[1])
		if err != nil {
			return nodes, simerr.NewAtLine(simerr.SevError, simerr.KindNodeFieldInvalid, lr.lineNum, "bad node id "+fields[1])
		}
		id := uint32(id64)

		vaddr, err := parseUint(fields[2])
		if err != nil {
			return nodes, simerr.NewAtLine(simerr.SevError, simerr.KindNodeFieldInvalid, lr.lineNum, "bad virtual_addr "+fields[2])
		}

		paddr, hasP, err := parseAddr(fields[3])
		if err != nil {
			return nodes, simerr.NewAtLine(simerr.SevError, simerr.KindNodeFieldInvalid, lr.lineNum, "bad physical_addr "+fields[3])
		}

		opcode, err := parseUint(fields[4])
		if err != nil {
			return nodes, simerr.NewAtLine(simerr.SevError, simerr.KindNodeFieldInvalid, lr.lineNum, "bad opcode "+fields[4])
		}

		size, err := strconv.Atoi(fields[5])
		if err != nil {
			return nodes, simerr.NewAtLine(simerr.SevError, simerr.KindNodeFieldInvalid, lr.lineNum, "bad size "+fields[5])
		}

		rec := NodeRecord{
			ID:              id,
			VirtualAddr:     vaddr,
			PhysicalAddr:    paddr,
			HasPhysicalAddr: hasP,
			Opcode:          opcode,
			OpcodeSize:      size,
			defined:         true,
		}
		parseNodeOptionalFields(&rec, fields[6:])
		parseMnemonic(&rec, line)

		nodes = ensureLen(nodes, id)
		existing := nodes[id]
		if existing.defined && existing.Conditionality != CondUnknown {
			logger.Logf(common.SeverityWarning, "duplicated node id %d at line %d, keeping earlier definition", id, lr.lineNum)
			continue
		}
		nodes[id] = rec
	}
}

func parseNodeOptionalFields(rec *NodeRecord, tokens []string) {
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		key, value, ok := strings.Cut(tok, ":")
		if !ok {
			// bare token that is not a key: skip it.
			continue
		}
		// "key: value" splits into two tokens; the value is the next one.
		if value == "" && i+1 < len(tokens) {
			i++
			value = tokens[i]
		}
		switch key {
		case "class":
			rec.Type, rec.Directness = classifyToken(value)
		case "behavior":
			rec.Conditionality = behaviorToken(value)
		case "taken_cnt":
			if v, err := parseUint(value); err == nil {
				rec.TakenCnt = v
			}
		case "not_taken_cnt":
			if v, err := parseUint(value); err == nil {
				rec.NotTakenCnt = v
			}
		case "tgt_cnt":
			if v, err := parseUint(value); err == nil {
				rec.TgtCnt = v
			}
		default:
			// unrecognized key: its one value token was consumed above and
			// is discarded.
		}
	}
}

func classifyToken(value string) (BranchType, Directness) {
	v := strings.ToUpper(value)
	typ := TypeUnknown
	dir := DirUnknown
	switch {
	case strings.Contains(v, "RET"):
		typ = TypeRet
	case strings.Contains(v, "CALL"):
		typ = TypeCall
	case strings.Contains(v, "JMP"):
		typ = TypeJmp
	}
	switch {
	case strings.Contains(v, "INDIRECT"):
		dir = DirIndirect
	case strings.Contains(v, "DIRECT"):
		dir = DirDirect
	}
	return typ, dir
}

func behaviorToken(value string) Conditionality {
	v := strings.ToUpper(value)
	switch {
	case strings.Contains(v, "UNCONDITIONAL"):
		return CondUnconditional
	case strings.Contains(v, "CONDITIONAL"):
		return CondConditional
	default:
		return CondUnknown
	}
}

func parseMnemonic(rec *NodeRecord, fullLine string) {
	idx := strings.Index(fullLine, "mnemonic:")
	if idx < 0 {
		return
	}
	rest := fullLine[idx+len("mnemonic:"):]
	rest = strings.TrimSpace(rest)
	if len(rest) == 0 || rest[0] != '"' {
		return
	}
	end := strings.IndexByte(rest[1:], '"')
	if end < 0 {
		return
	}
	rec.Mnemonic = rest[1 : 1+end]
}

// edgeTableResult reports how the ASCII edge table terminated so the caller
// can hand off the underlying reader to the BT10 binary decoder.
type edgeTableResult struct {
	edges []EdgeRecord
}

// parseEdgeTable reads phase E: EDGE lines until the BT10_BIG_INDEX_SIZE_32
// marker, which ends ASCII parsing and leaves lr positioned at the first
// byte of the binary edge-id sequence.
func parseEdgeTable(lr *lineReader, nodes []NodeRecord, logger common.Logger) (edgeTableResult, error) {
	var edges []EdgeRecord
	sawSmallIndex := false

	for {
		line, err := lr.next()
		if err != nil {
			return edgeTableResult{edges}, simerr.Wrap(simerr.SevError, simerr.KindMissingSection, "reached EOF before "+bigIndexMark, err)
		}

		if line == smallIndexMark {
			sawSmallIndex = true
			continue
		}
		if line == bigIndexMark {
			if !sawSmallIndex {
				return edgeTableResult{edges}, simerr.NewAtLine(simerr.SevError, simerr.KindMissingSection, lr.lineNum, bigIndexMark+" without "+smallIndexMark)
			}
			return edgeTableResult{edges}, nil
		}

		fields := strings.Fields(line)
		if len(fields) < 8 || fields[0] != "EDGE" {
			return edgeTableResult{edges}, simerr.NewAtLine(simerr.SevError, simerr.KindEdgeFieldInvalid, lr.lineNum, "malformed EDGE line: "+line)
		}

		id64, err := parseUint(fields[1])
		if err != nil {
			return edgeTableResult{edges}, simerr.NewAtLine(simerr.SevError, simerr.KindEdgeFieldInvalid, lr.lineNum, "bad edge id "+fields[1])
		}
		id := uint32(id64)

		srcID64, err := parseUint(fields[2])
		if err != nil {
			return edgeTableResult{edges}, simerr.NewAtLine(simerr.SevError, simerr.KindEdgeFieldInvalid, lr.lineNum, "bad src_id "+fields[2])
		}
		dstID64, err := parseUint(fields[3])
		if err != nil {
			return edgeTableResult{edges}, simerr.NewAtLine(simerr.SevError, simerr.KindEdgeFieldInvalid, lr.lineNum, "bad dst_id "+fields[3])
		}
		srcID, dstID := uint32(srcID64), uint32(dstID64)

		if srcID >= uint32(len(nodes)) || !nodes[srcID].defined {
			return edgeTableResult{edges}, simerr.NewAtLine(simerr.SevError, simerr.KindInvalidReference, lr.lineNum, fmt.Sprintf("src_id %d not yet seen", srcID))
		}
		if dstID >= uint32(len(nodes)) || !nodes[dstID].defined {
			return edgeTableResult{edges}, simerr.NewAtLine(simerr.SevError, simerr.KindInvalidReference, lr.lineNum, fmt.Sprintf("dst_id %d not yet seen", dstID))
		}

		taken := fields[4] == "T"

		vtgt, err := parseUint(fields[5])
		if err != nil {
			return edgeTableResult{edges}, simerr.NewAtLine(simerr.SevError, simerr.KindEdgeFieldInvalid, lr.lineNum, "bad virt_tgt "+fields[5])
		}

		ptgt, hasP, err := parseAddr(fields[6])
		if err != nil {
			return edgeTableResult{edges}, simerr.NewAtLine(simerr.SevError, simerr.KindEdgeFieldInvalid, lr.lineNum, "bad phy_tgt "+fields[6])
		}

		instCnt, err := parseUint(fields[7])
		if err != nil {
			return edgeTableResult{edges}, simerr.NewAtLine(simerr.SevError, simerr.KindEdgeFieldInvalid, lr.lineNum, "bad inst_cnt "+fields[7])
		}

		rec := EdgeRecord{
			ID:                id,
			SrcID:             srcID,
			DstID:             dstID,
			Taken:             taken,
			VirtualTarget:     vtgt,
			PhysicalTarget:    ptgt,
			HasPhysicalTarget: hasP,
			InstCnt:           instCnt,
			defined:           true,
		}

		for uint32(len(edges)) <= id {
			edges = append(edges, EdgeRecord{})
		}
		if edges[id].defined {
			// Preserves the warn-only path spec.md §9 calls for: the
			// original's duplicate-edge branch was dead code (if(1) always
			// overwrites); here the warning is reachable and the newer
			// record still wins.
			logger.Logf(common.SeverityWarning, "duplicated edge id %d at line %d, overwriting", id, lr.lineNum)
		}
		edges[id] = rec
	}
}
