package compensate

import (
	"fmt"

	"github.com/proegssilb/tiesr-dialer-sub000/acoustic"
	"github.com/proegssilb/tiesr-dialer-sub000/internal/fixedpoint"
	"github.com/proegssilb/tiesr-dialer-sub000/noise"
)

// SVAMode selects variance adaptation.
type SVAMode int

const (
	SVAOff SVAMode = iota
	SVAPlain
	// SVAWeighted pulls the multipliers toward a noise level dependent
	// prior before applying them.
	SVAWeighted
)

func (m SVAMode) String() string {
	switch m {
	case SVAOff:
		return "off"
	case SVAPlain:
		return "sva"
	case SVAWeighted:
		return "wsva"
	}
	return fmt.Sprintf("SVAMode(%d)", int(m))
}

const (
	// Leading dimensions whose variances are never adapted.
	svaStartDim = 1

	// exp(2) in Q9 log, the largest inverse variance gain.
	maxLogGain = 2 << 9

	// Noise level jump (Q9) between utterances that switches to fast
	// smoothing of the prior.
	noiseLevelJump = 4096
	fastPriorAlpha = 19661 // 0.6
	slowPriorAlpha = 655   // 0.02

	wsvaStaticDims = 9
	wsvaDeltaDims  = 9

	// Prior limits, Q12.
	minPrior = 1170 // 1/3.5
	maxPrior = 6144 // 1.5

	// DefaultForget weights the old log multiplier in Update, Q15.
	DefaultForget = 29491
)

// Quadratic prior of the inverse variance multiplier (Q12) as a function of
// the noise level. Rows cover static dimensions 1..9 then delta dimensions
// 0..9.
var wsvaPolyCoef = [wsvaStaticDims + wsvaDeltaDims + 1][3]int16{
	{-16, -24, 4500}, {-16, -24, 4500}, {-16, -24, 4500},
	{-16, -24, 4500}, {-16, -24, 4500}, {-16, -24, 4500},
	{-16, -24, 4500}, {-16, -24, 4500}, {-16, -24, 4500},
	{-8, -16, 4300}, {-8, -16, 4300}, {-8, -16, 4300}, {-8, -16, 4300},
	{-8, -16, 4300}, {-8, -16, 4300}, {-8, -16, 4300}, {-8, -16, 4300},
	{-8, -16, 4300}, {-8, -16, 4300},
}

// SVA holds the per-dimension variance multipliers of one speaker and
// channel. LogVarRho is the persisted form (Q9, natural log of the
// variance scale); the linear inverse variance multipliers (Q12) are
// derived from it before each application.
type SVA struct {
	Mode   SVAMode
	Forget uint16

	LogVarRho []int16
	linear    []int16
}

// NewSVA returns neutral multipliers for vectors of dim values.
func NewSVA(dim int, mode SVAMode) *SVA {
	return &SVA{
		Mode:      mode,
		Forget:    DefaultForget,
		LogVarRho: make([]int16, dim),
		linear:    make([]int16, dim),
	}
}

// Linear returns the inverse variance multipliers of the last Apply, Q12.
func (s *SVA) Linear() []int16 { return s.linear }

// Clear resets the multipliers to one.
func (s *SVA) Clear() {
	clear(s.LogVarRho)
	InitMultipliers(s.LogVarRho, s.linear)
}

// InitMultipliers converts log variance scales (Q9) to linear inverse
// variance multipliers (Q12). The multiplier never exceeds exp(2).
func InitMultipliers(logVarRho, linear []int16) {
	for d := svaStartDim; d < len(logVarRho); d++ {
		m := int16(fixedpoint.MaxInt16)
		if logVarRho[d] != fixedpoint.MinInt16 {
			m = -logVarRho[d]
		}
		linear[d] = int16(expnPlusQ9(m))
	}
	for d := 0; d < svaStartDim && d < len(linear); d++ {
		linear[d] = 1 << 12
	}
}

// expnPlusQ9 is exp(x) in Q12 for x in Q9, x <= 2.
func expnPlusQ9(x int16) uint16 {
	x = min(x, maxLogGain)
	shift := 0
	for x > 0 {
		x -= fixedpoint.Ln2Q9
		shift++
	}
	l := fixedpoint.Expn(x, 9)
	shift -= 3
	if shift >= 0 {
		return l << uint(shift)
	}
	return l >> uint(-shift)
}

// WSVAVarScale is the prior inverse variance multiplier (Q12) of dimension
// i at noise level noiseEn (Q9). Dimensions without a prior give 0.
func WSVAVarScale(noiseEn int16, i, nMFCC int) int16 {
	var j int
	switch {
	case i < svaStartDim:
		return 0
	case i < nMFCC && i <= wsvaStaticDims:
		j = i - svaStartDim
	case i >= nMFCC && i <= nMFCC+wsvaDeltaDims:
		j = i - nMFCC + wsvaStaticDims - svaStartDim + 1
	default:
		return 0
	}
	c := wsvaPolyCoef[j]
	x := int32(noiseEn >> 9)
	var y int32
	if c[0] > 0 {
		y = fixedpoint.Q15Mul(uint16(c[0]), int32(noiseEn))
	} else {
		y = -fixedpoint.Q15Mul(uint16(-c[0]), int32(noiseEn))
	}
	y *= int32(noiseEn >> 6)
	y += x*int32(c[1]) + int32(c[2])
	return int16(min(max(y, minPrior), maxPrior))
}

// Weighted blends the multipliers toward the WSVA prior. energy may be nil,
// in which case the prior is taken at zero noise level with slow
// smoothing.
func (s *SVA) Weighted(nMFCC int, energy *noise.EnergyTracker) {
	var en int16
	alpha := uint16(slowPriorAlpha)
	if energy != nil {
		en = energy.MeanEn()
		if d := int32(en) - int32(energy.PrevMeanEn()); d > noiseLevelJump || d < -noiseLevelJump {
			alpha = fastPriorAlpha
		}
	}
	for d := svaStartDim; d < len(s.linear); d++ {
		prior := WSVAVarScale(en, d, nMFCC)
		if prior <= 0 {
			continue
		}
		r := fixedpoint.Q15Mul(alpha, int32(prior)) + fixedpoint.Q15Mul(fixedpoint.OneQ15-alpha, int32(s.linear[d]))
		s.linear[d] = int16(r)
		l := fixedpoint.RoundShift(int32(fixedpoint.LogPolyfit(r, 12)), 3) * (fixedpoint.Ln2Q9 >> 6)
		s.LogVarRho[d] = int16(-l)
	}
}

// Compensate rewrites every inverse variance of m from its original with
// the current linear multipliers and recomputes the Gaussian constants.
func (s *SVA) Compensate(m *acoustic.Model) error {
	if m == nil {
		return fail(StatusSVAFail, ErrNoModel)
	}
	if len(s.linear) != m.VecSize() {
		return fail(StatusSVAFail, fmt.Errorf("%w: %d multipliers, want %d", ErrModelDimension, len(s.linear), m.VecSize()))
	}
	scale := m.Dims().MuScaleP2
	for v := 0; v < m.NumVars(); v++ {
		orig := m.InvVarOrig(v)
		dst := m.InvVar(v)
		copy(dst[:svaStartDim], orig[:svaStartDim])
		for d := svaStartDim; d < len(dst); d++ {
			p := fixedpoint.RoundShift(int32(s.linear[d])*int32(orig[d]), 12)
			dst[d] = int16(min(p, fixedpoint.MaxInt16))
		}
		m.GConst[v] = acoustic.GaussDetConst(dst, 2, scale)
	}
	return nil
}

// Apply derives the multipliers, weights them when the mode asks for it
// and compensates the variances of m. It does nothing when SVA is off.
func (s *SVA) Apply(m *acoustic.Model, energy *noise.EnergyTracker) error {
	if s.Mode == SVAOff {
		return nil
	}
	InitMultipliers(s.LogVarRho, s.linear)
	if s.Mode == SVAWeighted && m != nil {
		s.Weighted(m.NMFCC, energy)
	}
	return s.Compensate(m)
}

// Update folds an utterance's observed log variance scales (Q9) into
// LogVarRho with the forget factor. The estimate is clamped so the
// inverse variance gain stays within exp(2).
func (s *SVA) Update(observed []int16) error {
	if len(observed) != len(s.LogVarRho) {
		return fmt.Errorf("%w: %d scales, want %d", ErrModelDimension, len(observed), len(s.LogVarRho))
	}
	for d := svaStartDim; d < len(observed); d++ {
		r := fixedpoint.Q15Mul(s.Forget, int32(s.LogVarRho[d])) +
			fixedpoint.Q15Mul(fixedpoint.OneQ15-s.Forget, int32(observed[d]))
		s.LogVarRho[d] = int16(max(r, -maxLogGain))
	}
	return nil
}
