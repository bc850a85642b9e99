package sim

// snapshot points, in ascending order, at which MPKBr (mispredictions per
// thousand branch instances) is recorded. These are compared against the
// driver's own per-instance loop counter, not the trace's declared
// instruction count — a quirk preserved from the reference per spec.md §9.
var snapshotPoints = []uint64{
	1_000, 10_000, 100_000, 1_000_000, 10_000_000, 30_000_000, 60_000_000,
	100_000_000, 300_000_000, 600_000_000, 1_000_000_000, 10_000_000_000,
}

const heartbeatInterval = 1000

// Stats is the aggregate accuracy report. Field order matches the
// reference's serialization order: every MPKBr_* snapshot, then TRACE,
// then the totals. A nil MPKBr_* field means that snapshot point was never
// reached.
type Stats struct {
	MPKBr1K   *float64 `json:"MPKBr_1K"`
	MPKBr10K  *float64 `json:"MPKBr_10K"`
	MPKBr100K *float64 `json:"MPKBr_100K"`
	MPKBr1M   *float64 `json:"MPKBr_1M"`
	MPKBr10M  *float64 `json:"MPKBr_10M"`
	MPKBr30M  *float64 `json:"MPKBr_30M"`
	MPKBr60M  *float64 `json:"MPKBr_60M"`
	MPKBr100M *float64 `json:"MPKBr_100M"`
	MPKBr300M *float64 `json:"MPKBr_300M"`
	MPKBr600M *float64 `json:"MPKBr_600M"`
	MPKBr1B   *float64 `json:"MPKBr_1B"`
	MPKBr10B  *float64 `json:"MPKBr_10B"`

	Trace string `json:"TRACE"`

	NumInstructions   uint64  `json:"NUM_INSTRUCTIONS"`
	NumBr             uint64  `json:"NUM_BR"`
	NumUncondBr       uint64  `json:"NUM_UNCOND_BR"`
	NumConditionalBr  uint64  `json:"NUM_CONDITIONAL_BR"`
	NumMispredictions uint64  `json:"NUM_MISPREDICTIONS"`
	MispredPer1KInst  float64 `json:"MISPRED_PER_1K_INST"`
}

func (s *Stats) slotFor(point uint64) **float64 {
	switch point {
	case 1_000:
		return &s.MPKBr1K
	case 10_000:
		return &s.MPKBr10K
	case 100_000:
		return &s.MPKBr100K
	case 1_000_000:
		return &s.MPKBr1M
	case 10_000_000:
		return &s.MPKBr10M
	case 30_000_000:
		return &s.MPKBr30M
	case 60_000_000:
		return &s.MPKBr60M
	case 100_000_000:
		return &s.MPKBr100M
	case 300_000_000:
		return &s.MPKBr300M
	case 600_000_000:
		return &s.MPKBr600M
	case 1_000_000_000:
		return &s.MPKBr1B
	case 10_000_000_000:
		return &s.MPKBr10B
	default:
		return nil
	}
}

// checkHeartbeat records MPKBr = 1000*mispreds/numIter at any snapshot
// point numIter lands on exactly. Called once per heartbeatInterval
// instances, matching the reference's exact-equality (not >=) comparison.
func (s *Stats) checkHeartbeat(numIter, mispreds uint64) {
	for _, point := range snapshotPoints {
		if numIter == point {
			v := 1000.0 * float64(mispreds) / float64(numIter)
			slot := s.slotFor(point)
			*slot = &v
		}
	}
}
