package main

import (
	"fmt"
	"io"
	"time"

	"viewc/internal/buildpipeline"
	"viewc/internal/observ"
)

// printStageTimings writes the coarse stage totals, then the per-stage
// table of timer when it is set.
func printStageTimings(out io.Writer, timings buildpipeline.Timings, timer *observ.Timer) {
	if out == nil {
		return
	}
	if timings.Has(buildpipeline.StageParse) {
		fmt.Fprintf(out, "parsed %.1f ms\n", toMillis(timings.Duration(buildpipeline.StageParse)))
	}
	if timings.Has(buildpipeline.StageCheck) {
		fmt.Fprintf(out, "checked %.1f ms\n", toMillis(timings.Duration(buildpipeline.StageCheck)))
	}
	if timings.Has(buildpipeline.StageEmit) {
		fmt.Fprintf(out, "emitted %.1f ms\n", toMillis(timings.Duration(buildpipeline.StageEmit)))
	}
	if timer != nil {
		fmt.Fprint(out, timer.Summary(true))
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
