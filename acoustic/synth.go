package acoustic

import (
	"math"
	"math/rand/v2"

	"github.com/proegssilb/tiesr-dialer-sub000/feature"
)

// synthFrames is the length of each synthetic vowel in frames.
const synthFrames = 8

// Synthetic builds a model whose means are cepstra of synthetic voiced
// frames with random pitch and spectral tilt. Means are paired into two
// component mixtures. A ByteCodec without Scale gets one fitted to the
// generated means. The same seed always gives the same model.
func Synthetic(nMFCC, nMeans int, codec MeanVectorCodec, seed uint64) (*Model, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	vecs := make([][]int16, 0, nMeans)
	sig := make([]int16, synthFrames*feature.FrameLen)
	for len(vecs) < nMeans {
		pitch := 90 + 160*rng.Float64()
		tilt := 0.5 + rng.Float64()
		amp := 1000 + 7000*rng.Float64()
		for n := range sig {
			var s float64
			for k := 1; float64(k)*pitch < feature.SampleRate/2; k++ {
				s += math.Sin(2*math.Pi*pitch*float64(k*n)/feature.SampleRate) / math.Pow(float64(k), tilt)
			}
			sig[n] = int16(max(-32768, min(32767, amp*s)))
		}
		cep, err := feature.Extract(sig, nMFCC)
		if err != nil {
			return nil, err
		}
		vecs = append(vecs, cep[synthFrames/2])
	}

	if bc, ok := codec.(ByteCodec); ok && bc.Scale == nil {
		codec = ByteCodec{Scale: FitByteScale(vecs, 2*nMFCC)}
	}
	m, err := NewModel(nMFCC, codec)
	if err != nil {
		return nil, err
	}
	iv := make([]int16, m.VecSize())
	for _, v := range vecs {
		if _, err := m.AddMean(v); err != nil {
			return nil, err
		}
		for d := range iv {
			iv[d] = int16(256 + rng.IntN(768))
		}
		if _, err := m.AddVar(iv); err != nil {
			return nil, err
		}
	}
	// log(1/2) in Q6
	const halfWeight = -44
	for i := 0; i+1 < nMeans; i += 2 {
		m.Mixtures = append(m.Mixtures, Mixture{
			{Mean: i, Var: i, LogWeight: halfWeight},
			{Mean: i + 1, Var: i + 1, LogWeight: halfWeight},
		})
	}
	return m, nil
}
