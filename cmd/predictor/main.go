package main

import (
	"flag"
	"fmt"
	"os"

	"branchsim/common"
	"branchsim/internal/predictor"
	"branchsim/internal/predictor/batage"
	"branchsim/internal/predictor/bimodal"
	"branchsim/internal/predictor/gshare"
	"branchsim/internal/predictor/gskew"
	"branchsim/internal/sim"
)

func main() {
	predName := flag.String("predictor", "bimodal", "predictor to simulate: bimodal, gshare, gskew, batage")
	seed := flag.Int64("seed", 1, "PRNG seed for predictors with randomized tie-breaking (gskew)")
	verbose := flag.Bool("verbose", false, "log warnings encountered while parsing the trace")

	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: predictor [-predictor name] [-seed n] [-verbose] <trace-path>")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	tracePath := flag.Arg(0)

	pred, err := choosePredictor(*predName, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	minLevel := common.SeverityError
	if *verbose {
		minLevel = common.SeverityWarning
	}
	logger := common.NewStdLoggerWithWriter(os.Stderr, os.Stderr, minLevel)

	stats, err := sim.Run(tracePath, pred, logger)
	if err != nil {
		logger.Error(err)
		os.Exit(1)
	}

	if err := sim.WriteReport(os.Stdout, stats); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func choosePredictor(name string, seed int64) (predictor.Predictor, error) {
	switch name {
	case "bimodal":
		return bimodal.NewDefault(), nil
	case "gshare":
		return gshare.NewDefault(), nil
	case "gskew":
		return gskew.New(seed), nil
	case "batage":
		return batage.New(), nil
	default:
		return nil, fmt.Errorf("unknown predictor %q (want bimodal, gshare, gskew, or batage)", name)
	}
}
