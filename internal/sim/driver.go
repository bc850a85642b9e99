// Package sim is the simulation driver: it iterates branch instances,
// classifies each into the opcode taxonomy, dispatches to the predictor
// contract, tallies mispredictions, and snapshots accuracy at exponentially
// spaced instance counts.
package sim

import (
	"path/filepath"
	"strings"

	"branchsim/common"
	"branchsim/internal/bt9"
	"branchsim/internal/predictor"
)

// Run replays tracePath through pred and returns the aggregate accuracy
// report keyed by the trace file's stem.
func Run(tracePath string, pred predictor.Predictor, logger common.Logger) (*Stats, error) {
	reader, err := bt9.Open(tracePath, logger)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	header := reader.Header()
	stats := &Stats{
		Trace: stem(tracePath),
	}

	var numIter, heartbeatCounter, mispreds uint64
	var numUncond, numCond uint64

	for {
		inst, ok, err := reader.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		op, err := classify(inst)
		if err != nil {
			return nil, err
		}

		pc := predictor.PreHash(inst.Src.VirtualAddr)

		if op.IsConditional() {
			numCond++
			predicted := pred.GetPrediction(pc)
			pred.UpdatePredictor(pc, op, inst.Edge.Taken, predicted, inst.Edge.VirtualTarget)
			if predicted != inst.Edge.Taken {
				mispreds++
			}
		} else if op != predictor.OpError {
			numUncond++
			pred.TrackOther(pc, op, inst.Edge.Taken, inst.Edge.VirtualTarget)
		}

		numIter++
		heartbeatCounter++
		if heartbeatCounter == heartbeatInterval {
			stats.checkHeartbeat(numIter, mispreds)
			heartbeatCounter = 0
		}
	}

	stats.NumInstructions = header.TotalInstructionCount
	if header.BranchInstructionCount > 0 {
		stats.NumBr = header.BranchInstructionCount - 1
	}
	stats.NumUncondBr = numUncond
	stats.NumConditionalBr = numCond
	stats.NumMispredictions = mispreds
	if header.TotalInstructionCount > 0 {
		stats.MispredPer1KInst = 1000.0 * float64(mispreds) / float64(header.TotalInstructionCount)
	}

	return stats, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
