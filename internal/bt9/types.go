// Package bt9 decodes a BT9/BT10 control-flow trace into a lazy sequence of
// branch instances: a text header, a node table, an edge table, all
// line-oriented, followed by a compact binary edge-id sequence.
package bt9

// Header is the trace's key/value preamble plus its typed projections.
// Immutable once constructed.
type Header struct {
	MinorVersion          uint64
	HasPhysicalAddress    bool
	MD5Checksum           string
	ConversionDate        string
	OriginalSTFInputFile  string
	TotalInstructionCount uint64
	BranchInstructionCount uint64
	Unclassified          map[string]string
}

// BranchType is the JMP/CALL/RET axis of a node's branch class.
type BranchType int

const (
	TypeUnknown BranchType = iota
	TypeJmp
	TypeCall
	TypeRet
)

// Directness is the DIRECT/INDIRECT axis of a node's branch class.
type Directness int

const (
	DirUnknown Directness = iota
	DirDirect
	DirIndirect
)

// Conditionality is the CONDITIONAL/UNCONDITIONAL axis of a node's branch
// class. CondUnknown also marks the dense table's sentinel entries (id 0)
// and any id never explicitly defined by a NODE line.
type Conditionality int

const (
	CondUnknown Conditionality = iota
	CondConditional
	CondUnconditional
)

// NodeRecord is a branch site: one row of the dense, id-indexed node table.
type NodeRecord struct {
	ID              uint32
	VirtualAddr     uint64
	PhysicalAddr    uint64
	HasPhysicalAddr bool
	Opcode          uint64
	OpcodeSize      int

	Type           BranchType
	Directness     Directness
	Conditionality Conditionality

	TakenCnt    uint64
	NotTakenCnt uint64
	TgtCnt      uint64

	Mnemonic string

	defined bool
}

// EdgeRecord is one (src, dst, taken) transition: one row of the dense,
// id-indexed edge table.
type EdgeRecord struct {
	ID                uint32
	SrcID             uint32
	DstID             uint32
	Taken             bool
	VirtualTarget     uint64
	PhysicalTarget    uint64
	HasPhysicalTarget bool
	InstCnt           uint64

	defined bool
}

// BranchInstance is an ephemeral (src, dst, edge) triple produced by the
// reader's iterator. It points into the reader's own dense tables and is
// only valid until the next call to Reader.Next.
type BranchInstance struct {
	Src   *NodeRecord
	Dst   *NodeRecord
	Edge  *EdgeRecord
	Valid bool
}
