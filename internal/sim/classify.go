package sim

import (
	"fmt"

	"branchsim/internal/bt9"
	"branchsim/internal/predictor"
	"branchsim/internal/simerr"
)

// classify derives the opcode taxonomy from a node's branch class. A
// classification failure on the sentinel node (index 0) is tolerated per
// spec.md §7; anywhere else it is fatal.
func classify(inst *bt9.BranchInstance) (predictor.OpType, error) {
	src := inst.Src

	op, ok := classifyFields(src.Type, src.Directness, src.Conditionality)
	if !ok {
		if src.ID == 0 {
			return predictor.OpError, nil
		}
		return predictor.OpError, simerr.New(simerr.SevError, simerr.KindClassificationError,
			fmt.Sprintf("node %d (pc=%#x, mnemonic=%q) did not match any opcode taxonomy", src.ID, src.VirtualAddr, src.Mnemonic))
	}
	return op, nil
}

func classifyFields(typ bt9.BranchType, dir bt9.Directness, cond bt9.Conditionality) (predictor.OpType, bool) {
	switch typ {
	case bt9.TypeRet:
		switch cond {
		case bt9.CondConditional:
			return predictor.OpRetCond, true
		case bt9.CondUnconditional:
			return predictor.OpRetUncond, true
		default:
			return predictor.OpError, false
		}
	case bt9.TypeCall:
		switch {
		case dir == bt9.DirIndirect && cond == bt9.CondConditional:
			return predictor.OpCallIndirectCond, true
		case dir == bt9.DirIndirect && cond == bt9.CondUnconditional:
			return predictor.OpCallIndirectUncond, true
		case dir == bt9.DirDirect && cond == bt9.CondConditional:
			return predictor.OpCallDirectCond, true
		case dir == bt9.DirDirect && cond == bt9.CondUnconditional:
			return predictor.OpCallDirectUncond, true
		default:
			return predictor.OpError, false
		}
	case bt9.TypeJmp:
		switch {
		case dir == bt9.DirIndirect && cond == bt9.CondConditional:
			return predictor.OpJmpIndirectCond, true
		case dir == bt9.DirIndirect && cond == bt9.CondUnconditional:
			return predictor.OpJmpIndirectUncond, true
		case dir == bt9.DirDirect && cond == bt9.CondConditional:
			return predictor.OpJmpDirectCond, true
		case dir == bt9.DirDirect && cond == bt9.CondUnconditional:
			return predictor.OpJmpDirectUncond, true
		default:
			return predictor.OpError, false
		}
	default:
		return predictor.OpError, false
	}
}
