package acoustic

import "github.com/proegssilb/tiesr-dialer-sub000/internal/fixedpoint"

// ScoreType selects how mixture components are combined.
type ScoreType int

const (
	// Full sums the component likelihoods.
	Full ScoreType = iota
	// Viterbi keeps the best component.
	Viterbi
)

// BadScore is returned for an empty mixture.
const BadScore int16 = fixedpoint.MinInt16

// Component is one Gaussian of a mixture: indices into the model's mean and
// variance stores plus the log mixture weight, Q6.
type Component struct {
	Mean      int
	Var       int
	LogWeight int16
}

// Mixture is a Gaussian mixture density.
type Mixture []Component

// ObsScore returns the log likelihood, Q6, of the static+delta feature
// vector feat under mixture mix, and the index of the best component. It
// uses the model's current (compensated) means, variances and constants.
// mean is scratch space of at least VecSize values; a shorter slice is
// replaced by a fresh one.
func (m *Model) ObsScore(feat []int16, mix Mixture, typ ScoreType, mean []int16) (int16, int) {
	total, top := BadScore, BadScore
	best := -1
	if len(mean) < m.VecSize() {
		mean = make([]int16, m.VecSize())
	}
	mean = mean[:m.VecSize()]
	for i, c := range mix {
		m.UnpackMean(c.Mean, mean)
		scr := gaussianScore(feat, mean, m.InvVar(c.Var), m.GConst[c.Var]) + int32(c.LogWeight)
		s := fixedpoint.Sat16(scr)
		if best < 0 || s > top {
			top = s
			best = i
		}
		if typ == Full {
			if i == 0 {
				total = s
			} else {
				total = fixedpoint.LogSum(total, s)
			}
		}
	}
	if typ == Viterbi {
		total = top
	}
	return total, best
}

// gaussianScore is -(gconst + sum(invVar*(x-mu)^2))/2 in Q6. x and mu are
// Q11 (per-dimension scaled), invVar Q9.
func gaussianScore(x, mu, invVar []int16, gconst int16) int32 {
	var sum int64
	for d := range mu {
		diff := int64(x[d]) - int64(mu[d])
		// Q22 * Q9 >> 25 = Q6
		sum += (diff * diff * int64(invVar[d])) >> 25
	}
	sum += int64(gconst)
	return fixedpoint.Sat32(-(sum >> 1))
}
