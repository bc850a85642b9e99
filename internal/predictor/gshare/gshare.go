// Package gshare implements a global-history-indexed counter-table
// predictor: the same counter.Table storage as bimodal, but indexed by
// PC XOR a shift register of recent outcomes.
package gshare

import (
	"branchsim/internal/predictor"
	"branchsim/internal/predictor/counter"
)

const (
	defaultLogEntries = 16
	counterWidth      = 2
	defaultHysteresis = 2
)

// Predictor is a gshare branch predictor.
type Predictor struct {
	table *counter.Table
	mask  uint64
	ghr   uint64
}

// New builds a gshare predictor with 2^logEntries counters.
func New(logEntries, hysteresis int) *Predictor {
	n := 1 << logEntries
	return &Predictor{
		table: counter.New(n, counterWidth, []int{1, hysteresis}, 0b01),
		mask:  uint64(n - 1),
	}
}

func NewDefault() *Predictor {
	return New(defaultLogEntries, defaultHysteresis)
}

func (p *Predictor) index(pc uint64) int {
	return int((pc ^ p.ghr) & p.mask)
}

func (p *Predictor) GetPrediction(pc uint64) bool {
	return p.table.Get(p.index(pc)).Dir
}

func (p *Predictor) UpdatePredictor(pc uint64, _ predictor.OpType, taken, _ bool, _ uint64) {
	p.table.ApplyUpdate(p.index(pc), taken)
	p.ghr = (p.ghr << 1)
	if taken {
		p.ghr |= 1
	}
}

func (p *Predictor) TrackOther(uint64, predictor.OpType, bool, uint64) {}

var _ predictor.Predictor = (*Predictor)(nil)
