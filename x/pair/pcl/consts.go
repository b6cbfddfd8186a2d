// Package pcl implements the concentrated-liquidity (Curve v2 style) invariant, its dynamic fee,
// the amp/gamma ramp and the price-scale repeg with xCP profit accounting.
//
// All values are real token units as math.LegacyDec. The second asset is multiplied by
// price_scale before it enters the invariant; price_scale is the price of asset 1 in asset 0.
package pcl

import (
	"cosmossdk.io/math"
)

const (
	// NCoins is the number of assets in a pair.
	NCoins = 2
	// MaxIterations caps both Newton solvers.
	MaxIterations = 64
	// LPTokenPrecision is the number of decimals of the LP token.
	LPTokenPrecision = 6
	// MinAmpChangingTime is the minimum spacing, in seconds, between ramps and of a ramp's end.
	MinAmpChangingTime = 86_400
	// MaxAmpGammaChange bounds the ratio between current and targeted amp or gamma of one ramp.
	MaxAmpGammaChange = 10
	// MaxMaHalfTime is the largest EMA half time in seconds.
	MaxMaHalfTime = 7 * 86_400
)

var (
	two  = math.LegacyNewDec(2)
	four = math.LegacyNewDec(4)
	ten  = math.LegacyNewDec(10)

	MinAmp   = math.LegacyNewDec(1)
	MaxAmp   = math.LegacyNewDec(1_000_000)
	MinGamma = math.LegacyNewDecWithPrec(1, 8)
	MaxGamma = math.LegacyNewDecWithPrec(1, 2)

	MinFee      = math.LegacyNewDecWithPrec(5, 5)
	MaxFee      = math.LegacyNewDecWithPrec(1, 2)
	MinFeeGamma = math.LegacyNewDecWithPrec(1, 4)
	MaxFeeGamma = math.LegacyOneDec()

	MaxRepegProfitThreshold = math.LegacyNewDecWithPrec(1, 2)
	MaxMinPriceScaleDelta   = math.LegacyOneDec()
	MaxPriceScale           = math.LegacyNewDec(1_000_000_000_000_000_000)

	// FeeTol zeroes the mid fee weight when the pool is far from balance.
	FeeTol = math.LegacyNewDecWithPrec(1, 9)
	// MinTradeSize is the smallest trade, in real units, that moves the price state.
	MinTradeSize = math.LegacyNewDecWithPrec(1, 6)
	// MinimumLiquidityAmount is locked in the pair on the first provide, in LP token units.
	MinimumLiquidityAmount = math.LegacyNewDecWithPrec(1_000, LPTokenPrecision)

	// relTol and absTol bound the Newton step at which a solver is considered converged.
	relTol = math.LegacyNewDecWithPrec(1, 12)
	absTol = math.LegacyNewDecWithPrec(1, 15)
)
