package audio

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// Resample converts mono samples from one rate to another. Equal rates
// return a copy.
func Resample(samples []int16, from, to int) ([]int16, error) {
	if from <= 0 || to <= 0 {
		return nil, fmt.Errorf("audio: invalid rates %d -> %d", from, to)
	}
	if from == to {
		return append([]int16(nil), samples...), nil
	}
	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(from),
		OutputRate: float64(to),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("audio: create resampler: %w", err)
	}

	in := make([]float64, len(samples))
	for i, s := range samples {
		in[i] = float64(s) / 32768.0
	}
	out, err := r.Process(in)
	if err != nil {
		return nil, fmt.Errorf("audio: resample: %w", err)
	}
	return toPCM(out), nil
}

func toPCM(f []float64) []int16 {
	pcm := make([]int16, len(f))
	for i, v := range f {
		v = min(max(v, -1), 1)
		pcm[i] = int16(v * 32767)
	}
	return pcm
}
