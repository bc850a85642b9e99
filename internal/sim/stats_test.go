package sim

import "testing"

func TestHeartbeatOnlyFiresOnExactMultiples(t *testing.T) {
	s := &Stats{}
	s.checkHeartbeat(999, 0)
	if s.MPKBr1K != nil {
		t.Error("checkHeartbeat(999) populated MPKBr_1K, want nil")
	}

	s.checkHeartbeat(1000, 5)
	if s.MPKBr1K == nil {
		t.Fatal("checkHeartbeat(1000) left MPKBr_1K nil")
	}
	if *s.MPKBr1K != 5.0 {
		t.Errorf("MPKBr_1K = %v, want 5.0", *s.MPKBr1K)
	}
	if s.MPKBr10K != nil {
		t.Error("checkHeartbeat(1000) populated MPKBr_10K, want nil")
	}
}

func TestUnreachedSnapshotsStayNull(t *testing.T) {
	s := &Stats{}
	s.checkHeartbeat(500, 0)
	if s.MPKBr1K != nil || s.MPKBr10K != nil {
		t.Error("checkHeartbeat below first threshold populated a snapshot")
	}
}
