package stableswap

import (
	"cosmossdk.io/math"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/fixedpoint"
)

const (
	MinAmp = 1
	MaxAmp = 1_000_000
	// MaxAmpChange bounds the ratio between the current and the targeted amp of one ramp.
	MaxAmpChange = 10
	// MinAmpChangingTime is the minimum spacing, in seconds, between ramps and of a ramp's end.
	MinAmpChangingTime = 86_400
)

// AmpRamp linearly moves amp (scaled by AmpPrecision) from InitAmp at InitAmpTime to NextAmp at
// NextAmpTime. Times are unix seconds.
type AmpRamp struct {
	InitAmp     uint64 `json:"init_amp"`
	InitAmpTime uint64 `json:"init_amp_time"`
	NextAmp     uint64 `json:"next_amp"`
	NextAmpTime uint64 `json:"next_amp_time"`
}

// NewAmpRamp returns a settled ramp at amp (unscaled).
func NewAmpRamp(amp, now uint64) (AmpRamp, error) {
	if amp < MinAmp || amp > MaxAmp {
		return AmpRamp{}, fixedpoint.ErrIncorrectAmp.Wrapf("amp must be in [%d, %d], got %d", MinAmp, MaxAmp, amp)
	}
	scaled := amp * AmpPrecision
	return AmpRamp{InitAmp: scaled, InitAmpTime: now, NextAmp: scaled, NextAmpTime: now}, nil
}

// Current returns the interpolated amp at now. A clock that runs backwards reads as InitAmp.
func (r AmpRamp) Current(now uint64) uint64 {
	if now >= r.NextAmpTime {
		return r.NextAmp
	}
	var elapsed uint64
	if now > r.InitAmpTime {
		elapsed = now - r.InitAmpTime
	}
	var span uint64
	if r.NextAmpTime > r.InitAmpTime {
		span = r.NextAmpTime - r.InitAmpTime
	}
	if span == 0 {
		return r.NextAmp
	}

	if r.NextAmp > r.InitAmp {
		step := math.NewIntFromUint64(r.NextAmp - r.InitAmp).Mul(math.NewIntFromUint64(elapsed)).Quo(math.NewIntFromUint64(span))
		return r.InitAmp + step.Uint64()
	}
	step := math.NewIntFromUint64(r.InitAmp - r.NextAmp).Mul(math.NewIntFromUint64(elapsed)).Quo(math.NewIntFromUint64(span))
	return r.InitAmp - step.Uint64()
}

// IsRamping reports whether the amp is still moving at now.
func (r AmpRamp) IsRamping(now uint64) bool {
	return now < r.NextAmpTime
}

// Start begins a ramp from the current amp to nextAmp (unscaled) ending at nextAmpTime.
func (r AmpRamp) Start(nextAmp, nextAmpTime, now uint64) (AmpRamp, error) {
	if nextAmp < MinAmp || nextAmp > MaxAmp {
		return AmpRamp{}, fixedpoint.ErrIncorrectAmp.Wrapf("amp must be in [%d, %d], got %d", MinAmp, MaxAmp, nextAmp)
	}
	current := r.Current(now)
	next := nextAmp * AmpPrecision
	if next*MaxAmpChange < current || next > current*MaxAmpChange {
		return AmpRamp{}, fixedpoint.ErrMaxAmpChange.Wrapf("max amp change is %d", MaxAmpChange)
	}
	if now < r.InitAmpTime+MinAmpChangingTime || nextAmpTime < now+MinAmpChangingTime {
		return AmpRamp{}, fixedpoint.ErrMinAmpChangingTime.Wrapf("min amp changing time is %d seconds", MinAmpChangingTime)
	}
	return AmpRamp{InitAmp: current, InitAmpTime: now, NextAmp: next, NextAmpTime: nextAmpTime}, nil
}

// Stop freezes the amp at its current value.
func (r AmpRamp) Stop(now uint64) AmpRamp {
	current := r.Current(now)
	return AmpRamp{InitAmp: current, InitAmpTime: now, NextAmp: current, NextAmpTime: now}
}
