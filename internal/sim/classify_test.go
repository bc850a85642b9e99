package sim

import (
	"testing"

	"branchsim/internal/bt9"
	"branchsim/internal/predictor"
)

func node(id uint32, typ bt9.BranchType, dir bt9.Directness, cond bt9.Conditionality) *bt9.NodeRecord {
	return &bt9.NodeRecord{ID: id, Type: typ, Directness: dir, Conditionality: cond}
}

func TestClassifySentinelErrorIsTolerated(t *testing.T) {
	inst := &bt9.BranchInstance{Src: node(0, bt9.TypeUnknown, bt9.DirUnknown, bt9.CondUnknown)}
	op, err := classify(inst)
	if err != nil {
		t.Fatalf("classify(sentinel) returned error: %v", err)
	}
	if op != predictor.OpError {
		t.Errorf("classify(sentinel) op = %v, want OpError", op)
	}
}

func TestClassifyNonSentinelUnknownIsFatal(t *testing.T) {
	inst := &bt9.BranchInstance{Src: node(5, bt9.TypeUnknown, bt9.DirUnknown, bt9.CondUnknown)}
	if _, err := classify(inst); err == nil {
		t.Fatal("classify(non-sentinel unknown) want error, got nil")
	}
}

func TestClassifyTaxonomy(t *testing.T) {
	cases := []struct {
		typ  bt9.BranchType
		dir  bt9.Directness
		cond bt9.Conditionality
		want predictor.OpType
	}{
		{bt9.TypeJmp, bt9.DirDirect, bt9.CondConditional, predictor.OpJmpDirectCond},
		{bt9.TypeJmp, bt9.DirIndirect, bt9.CondUnconditional, predictor.OpJmpIndirectUncond},
		{bt9.TypeCall, bt9.DirDirect, bt9.CondUnconditional, predictor.OpCallDirectUncond},
		{bt9.TypeCall, bt9.DirIndirect, bt9.CondConditional, predictor.OpCallIndirectCond},
		{bt9.TypeRet, bt9.DirUnknown, bt9.CondConditional, predictor.OpRetCond},
		{bt9.TypeRet, bt9.DirUnknown, bt9.CondUnconditional, predictor.OpRetUncond},
	}
	for _, c := range cases {
		inst := &bt9.BranchInstance{Src: node(9, c.typ, c.dir, c.cond)}
		got, err := classify(inst)
		if err != nil {
			t.Fatalf("classify(%+v): %v", c, err)
		}
		if got != c.want {
			t.Errorf("classify(%+v) = %v, want %v", c, got, c.want)
		}
	}
}
