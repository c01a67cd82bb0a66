package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-acid/dsp/core"
)

func ExampleApplyProcessorOptions() {
	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(48000),
		core.WithControlDivision(8),
	)

	fmt.Printf("sampleRate=%.0f controlRate=%.0f\n", cfg.SampleRate, cfg.ControlRate())

	// Output:
	// sampleRate=48000 controlRate=6000
}

func ExampleVoltsToHz() {
	fmt.Printf("%.2f %.2f\n", core.VoltsToHz(0), core.VoltsToHz(1))

	// Output:
	// 261.63 523.25
}
