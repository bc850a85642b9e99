// Package bimodal implements the simplest member of the counter-table
// predictor family: a single pattern-history table indexed directly by PC,
// with a 2-bit saturating counter per entry (direction bit unshared,
// hysteresis bit shared across a configurable number of neighbors).
package bimodal

import (
	"branchsim/internal/predictor"
	"branchsim/internal/predictor/counter"
)

const (
	defaultLogEntries = 16
	counterWidth      = 2
	defaultHysteresis = 2
)

// Predictor is a bimodal branch predictor: counter.Table indexed by
// PC & (N-1).
type Predictor struct {
	table *counter.Table
	mask  uint64
}

// New builds a bimodal predictor with 2^logEntries counters, sharing the
// hysteresis bit across groups of hysteresis neighbors (1 disables
// sharing).
func New(logEntries, hysteresis int) *Predictor {
	n := 1 << logEntries
	return &Predictor{
		table: counter.New(n, counterWidth, []int{1, hysteresis}, 0b01),
		mask:  uint64(n - 1),
	}
}

// NewDefault builds a bimodal predictor sized and shared the way the
// reference family's default configuration does.
func NewDefault() *Predictor {
	return New(defaultLogEntries, defaultHysteresis)
}

func (p *Predictor) index(pc uint64) int {
	return int(pc & p.mask)
}

func (p *Predictor) GetPrediction(pc uint64) bool {
	return p.table.Get(p.index(pc)).Dir
}

func (p *Predictor) UpdatePredictor(pc uint64, _ predictor.OpType, taken, _ bool, _ uint64) {
	p.table.ApplyUpdate(p.index(pc), taken)
}

func (p *Predictor) TrackOther(uint64, predictor.OpType, bool, uint64) {}

var _ predictor.Predictor = (*Predictor)(nil)
