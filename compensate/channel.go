package compensate

import (
	"fmt"

	"github.com/proegssilb/tiesr-dialer-sub000/feature"
	"github.com/proegssilb/tiesr-dialer-sub000/internal/fixedpoint"
)

// ChannelAccumulator gathers the statistics of a channel estimate from
// aligned frames. Each filter accumulates the residual between the
// observed and the compensated log-mel energy, weighted by the speech
// share of that filter, so that Update takes one Gauss-Newton step on the
// channel log spectrum.
type ChannelAccumulator struct {
	Domain Domain

	// Q15 sums, one per filter.
	Num []int64
	Den []int64

	beta [feature.MaxFilters]int16
	comp [feature.MaxFilters]int16
}

// NewChannelAccumulator returns empty sums for nFilter filters.
func NewChannelAccumulator(nFilter int, dom Domain) *ChannelAccumulator {
	return &ChannelAccumulator{
		Domain: dom,
		Num:    make([]int64, nFilter),
		Den:    make([]int64, nFilter),
	}
}

// Accumulate adds one aligned frame. clean is the log-mel spectrum of the
// aligned model mean, observed that of the input frame, logN and logH the
// current noise and channel, all Q9. gamma is the alignment weight, Q15.
func (a *ChannelAccumulator) Accumulate(clean, observed, logN, logH []int16, gamma uint16) error {
	n := len(a.Num)
	if len(clean) < n || len(observed) < n || len(logN) < n || len(logH) < n {
		return fmt.Errorf("%w: want %d filters", ErrModelDimension, n)
	}
	beta := a.beta[:n]
	comp := a.comp[:n]
	SpeechShare(a.Domain, clean[:n], logN[:n], logH, beta)
	LogSpectralCompensation(a.Domain, clean[:n], nil, logN[:n], logH, comp, nil)
	for i := range n {
		w := int64(fixedpoint.Q15Mul(gamma, int32(beta[i]))) // Q15
		diff := int64(observed[i]) - int64(comp[i])          // Q9
		a.Num[i] += (w * diff) >> 9
		a.Den[i] += (w * int64(beta[i])) >> 15
	}
	return nil
}

// Update moves logH by the accumulated step and clears the sums. It returns
// StatusNoAlignment when nothing was accumulated.
func (a *ChannelAccumulator) Update(logH []int16) Status {
	moved := false
	for i := range a.Num {
		if a.Den[i] <= 0 {
			continue
		}
		step := fixedpoint.Div32Q(fixedpoint.Sat32(a.Num[i]), fixedpoint.Sat32(a.Den[i]), 9)
		logH[i] = fixedpoint.Sat16L(int64(logH[i]) + int64(step))
		moved = true
	}
	a.Reset()
	if !moved {
		return StatusNoAlignment
	}
	return StatusSuccess
}

// Reset clears the sums.
func (a *ChannelAccumulator) Reset() {
	clear(a.Num)
	clear(a.Den)
}
