package compensate

import (
	"fmt"

	"github.com/proegssilb/tiesr-dialer-sub000/acoustic"
	"github.com/proegssilb/tiesr-dialer-sub000/feature"
)

// Compensator rewrites model mean vectors for a noise and channel
// estimate. It owns its scratch buffers, so one Compensator must not be
// shared between goroutines.
type Compensator struct {
	Domain Domain

	dims  *feature.Dims
	codec acoustic.MeanVectorCodec

	clean [2 * feature.MaxMFCC]int16
	comp  [2 * feature.MaxMFCC]int16
	sp    [feature.MaxFilters]int16
	regSp [feature.MaxFilters]int16
	pmc   [feature.MaxFilters]int16
	reg   [feature.MaxFilters]int16
}

// NewCompensator returns a compensator for the dimension and mean codec
// of m.
func NewCompensator(m *acoustic.Model, dom Domain) (*Compensator, error) {
	if m == nil {
		return nil, ErrNoModel
	}
	return &Compensator{Domain: dom, dims: m.Dims(), codec: m.Codec}, nil
}

// PMC compensates one stored mean. orig and dst are in the model codec's
// packed form. logN is the noise log-mel spectrum and logH the channel
// (nil for none), both Q9. When bias is non-nil it receives the
// difference between the compensated and the clean unpacked vector.
func (c *Compensator) PMC(orig, dst, logN, logH, bias []int16) error {
	d := c.dims
	n := d.NMFCC
	if len(logN) < d.NFilter || (logH != nil && len(logH) < d.NFilter) {
		return fmt.Errorf("%w: %d filters, want %d", ErrModelDimension, len(logN), d.NFilter)
	}
	clean := c.clean[:2*n]
	comp := c.comp[:2*n]
	c.codec.Unpack(orig, clean)

	nf := d.NFilter
	d.CosTransform(clean[:n], d.MuScaleP2[:n], c.sp[:nf])
	d.CosTransform(clean[n:], d.MuScaleP2[n:], c.regSp[:nf])

	LogSpectralCompensation(c.Domain, c.sp[:nf], c.regSp[:nf], logN[:nf], logH, c.pmc[:nf], c.reg[:nf])

	d.InverseCosTransform(c.pmc[:nf], d.MuScaleP2[:n], comp[:n])
	d.InverseCosTransform(c.reg[:nf], d.MuScaleP2[n:], comp[n:])

	if bias != nil {
		for i := range comp {
			bias[i] = comp[i] - clean[i]
		}
	}
	c.codec.Pack(comp, dst)
	return nil
}

// CompensateMean runs PMC on mean i of m, reading the original and writing
// the working copy.
func (c *Compensator) CompensateMean(m *acoustic.Model, i int, logN, logH []int16) error {
	return c.PMC(m.MeanOrig(i), m.Mean(i), logN, logH, nil)
}
