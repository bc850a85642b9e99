package batage

import "testing"

func TestAlwaysTakenConverges(t *testing.T) {
	p := New()
	mispreds := 0
	const pc = 0x1234
	for i := 0; i < 2000; i++ {
		pred := p.GetPrediction(pc)
		if !pred {
			mispreds++
		}
		p.UpdatePredictor(pc, 0, true, pred, 0)
	}
	if mispreds > 32 {
		t.Errorf("mispredicted %d/2000 on an always-taken branch, want it to converge quickly", mispreds)
	}
}

func TestTrackOtherAdvancesHistoryWithoutPredicting(t *testing.T) {
	p := New()
	before := p.hist.bits
	p.TrackOther(0x2000, 0, true, 0)
	if p.hist.bits == before {
		t.Error("TrackOther did not advance history")
	}
}

func TestHistoryAdvancesExactlyOncePerUpdate(t *testing.T) {
	p := New()
	before := p.hist.bits
	p.UpdatePredictor(0x3000, 0, true, false, 0)
	got := p.hist.bits
	want := (before << 1) | 1
	if got != want {
		t.Errorf("hist.bits = %#x, want %#x (exactly one shift-and-OR)", got, want)
	}
}
