package waveform_test

import (
	"fmt"

	"github.com/cwbudde/algo-fx/dsp/audiograph"
	"github.com/cwbudde/algo-fx/measure/waveform"
)

func ExampleSummarize() {
	buf := &audiograph.Buffer{
		SampleRate: 8,
		Channels:   [][]float64{{0.1, -0.1, 0.2, -0.2, 0.4, -0.4, 0.2, -0.2}},
	}

	peaks, err := waveform.Summarize(buf, 4)
	if err != nil {
		panic(err)
	}

	fmt.Println(peaks)

	// Output:
	// [0.25 0.5 1 0.5]
}
