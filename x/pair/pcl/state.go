package pcl

import (
	"cosmossdk.io/math"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/fixedpoint"
)

// AmpGamma is a point on the amp/gamma ramp.
type AmpGamma struct {
	Amp   math.LegacyDec `json:"amp"`
	Gamma math.LegacyDec `json:"gamma"`
}

// NewAmpGamma validates amp and gamma against their bounds.
func NewAmpGamma(amp, gamma math.LegacyDec) (AmpGamma, error) {
	if amp.IsNil() || amp.LT(MinAmp) || amp.GT(MaxAmp) {
		return AmpGamma{}, fixedpoint.ErrIncorrectAmp.Wrapf("amp must be in [%s, %s]", MinAmp, MaxAmp)
	}
	if gamma.IsNil() || gamma.LT(MinGamma) || gamma.GT(MaxGamma) {
		return AmpGamma{}, fixedpoint.ErrInvalidPoolParams.Wrapf("gamma must be in [%s, %s]", MinGamma, MaxGamma)
	}
	return AmpGamma{Amp: amp, Gamma: gamma}, nil
}

// Ann is amp * N^N.
func (ag AmpGamma) Ann() math.LegacyDec {
	return ag.Amp.MulInt64(NCoins * NCoins)
}

// PoolState holds the ramp schedule and the price state of a pair.
type PoolState struct {
	Initial     AmpGamma   `json:"initial"`
	Future      AmpGamma   `json:"future"`
	InitialTime uint64     `json:"initial_time"`
	FutureTime  uint64     `json:"future_time"`
	PriceState  PriceState `json:"price_state"`
}

// NewPoolState returns a settled state at ag with the given initial price scale.
func NewPoolState(ag AmpGamma, priceScale math.LegacyDec, now uint64) (PoolState, error) {
	if priceScale.IsNil() || !priceScale.IsPositive() || priceScale.GT(MaxPriceScale) {
		return PoolState{}, fixedpoint.ErrInvalidPoolParams.Wrapf("price_scale must be in (0, %s]", MaxPriceScale)
	}
	return PoolState{
		Initial:     ag,
		Future:      ag,
		InitialTime: now,
		FutureTime:  now,
		PriceState: PriceState{
			OraclePrice:     priceScale,
			LastPrice:       priceScale,
			PriceScale:      priceScale,
			LastPriceUpdate: now,
			XcpProfit:       math.LegacyZeroDec(),
			XcpProfitReal:   math.LegacyZeroDec(),
			XcpProfitLosses: math.LegacyZeroDec(),
		},
	}, nil
}

// IsRamping reports whether amp/gamma are still moving at now.
func (s PoolState) IsRamping(now uint64) bool {
	return now < s.FutureTime
}

// AmpGamma returns the interpolated amp and gamma at now.
func (s PoolState) AmpGamma(now uint64) AmpGamma {
	if now >= s.FutureTime || s.FutureTime <= s.InitialTime {
		return s.Future
	}
	var passed uint64
	if now > s.InitialTime {
		passed = now - s.InitialTime
	}
	ratio := math.LegacyNewDec(int64(passed)).QuoTruncate(math.LegacyNewDec(int64(s.FutureTime - s.InitialTime)))
	return AmpGamma{
		Amp:   interpolate(s.Initial.Amp, s.Future.Amp, ratio),
		Gamma: interpolate(s.Initial.Gamma, s.Future.Gamma, ratio),
	}
}

func interpolate(from, to, ratio math.LegacyDec) math.LegacyDec {
	if to.GTE(from) {
		return from.Add(to.Sub(from).MulTruncate(ratio))
	}
	return from.Sub(from.Sub(to).MulTruncate(ratio))
}

// StartRamp moves amp/gamma from their current values to next, reaching it at futureTime.
func (s *PoolState) StartRamp(next AmpGamma, futureTime, now uint64) error {
	next, err := NewAmpGamma(next.Amp, next.Gamma)
	if err != nil {
		return err
	}
	if now < s.InitialTime+MinAmpChangingTime || futureTime < now+MinAmpChangingTime {
		return fixedpoint.ErrMinAmpChangingTime.Wrapf("min amp changing time is %d seconds", MinAmpChangingTime)
	}
	current := s.AmpGamma(now)
	if !withinChange(current.Amp, next.Amp) {
		return fixedpoint.ErrMaxAmpChange.Wrapf("amp change exceeds %dx", MaxAmpGammaChange)
	}
	if !withinChange(current.Gamma, next.Gamma) {
		return fixedpoint.ErrMaxAmpChange.Wrapf("gamma change exceeds %dx", MaxAmpGammaChange)
	}
	s.Initial = current
	s.InitialTime = now
	s.Future = next
	s.FutureTime = futureTime
	return nil
}

func withinChange(a, b math.LegacyDec) bool {
	return a.MulInt64(MaxAmpGammaChange).GTE(b) && b.MulInt64(MaxAmpGammaChange).GTE(a)
}

// StopRamp freezes amp/gamma at their current values.
func (s *PoolState) StopRamp(now uint64) {
	current := s.AmpGamma(now)
	s.Initial = current
	s.Future = current
	s.InitialTime = now
	s.FutureTime = now
}
