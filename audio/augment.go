package audio

import "math"

// MixNoise adds noise to speech at the given signal to noise ratio in dB.
// The noise is repeated when it is shorter than the speech. The result has
// the length of speech and is clipped to 16 bits. Silent speech or noise
// returns a copy of speech.
func MixNoise(speech, noise []int16, snrDB float64) []int16 {
	out := make([]int16, len(speech))
	copy(out, speech)
	if len(speech) == 0 || len(noise) == 0 {
		return out
	}

	ps := power(speech)
	pn := power(noise)
	if ps == 0 || pn == 0 {
		return out
	}
	gain := math.Sqrt(ps / (pn * math.Pow(10, snrDB/10)))

	for i, s := range speech {
		v := float64(s) + gain*float64(noise[i%len(noise)])
		out[i] = int16(min(max(math.Round(v), math.MinInt16), math.MaxInt16))
	}
	return out
}

// power is the mean squared sample value.
func power(x []int16) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return sum / float64(len(x))
}
