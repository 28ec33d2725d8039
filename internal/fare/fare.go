// Package fare prices a ride from a base fare and a peak-hour flag.
//
// This is the single pricing source of truth: booking, quoting, and any
// simulation path must go through Policy.Price so they agree exactly.
package fare

import (
	"math"
	"time"
)

// PeakWindow is an inclusive local-hour range, e.g. {7, 9} covers 07:00-09:59.
type PeakWindow struct {
	StartHour int
	EndHour   int
}

// Policy holds the pricing knobs. Construct it from config; there is no
// package-level mutable state.
type Policy struct {
	PeakMultiplier    float64
	OffPeakMultiplier float64
	PeakWindows       []PeakWindow
}

// DefaultPolicy: 25% peak surcharge, 10% off-peak discount, commute windows
// 07-09 and 17-19.
func DefaultPolicy() Policy {
	return Policy{
		PeakMultiplier:    1.25,
		OffPeakMultiplier: 0.90,
		PeakWindows: []PeakWindow{
			{StartHour: 7, EndHour: 9},
			{StartHour: 17, EndHour: 19},
		},
	}
}

// NewPolicy keeps the default peak windows but takes multipliers from config.
// Zero multipliers fall back to the defaults.
func NewPolicy(peak, offPeak float64) Policy {
	p := DefaultPolicy()
	if peak > 0 {
		p.PeakMultiplier = peak
	}
	if offPeak > 0 {
		p.OffPeakMultiplier = offPeak
	}
	return p
}

// Price returns the chargeable amount for a base fare. Rounding is to the
// nearest point, ties away from zero. Pure and idempotent.
func (p Policy) Price(baseFare int64, isPeakHour bool) int64 {
	mult := p.OffPeakMultiplier
	if isPeakHour {
		mult = p.PeakMultiplier
	}
	return int64(math.Round(float64(baseFare) * mult))
}

// IsPeakHour reports whether t falls inside a peak window (local hour).
// Callers that own the peak determination use this; Price itself trusts the
// flag it is given.
func (p Policy) IsPeakHour(t time.Time) bool {
	hour := t.Local().Hour()
	for _, w := range p.PeakWindows {
		if hour >= w.StartHour && hour <= w.EndHour {
			return true
		}
	}
	return false
}
