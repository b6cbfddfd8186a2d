package xyk_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/fixedpoint"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/xyk"
)

var fee30bps = math.LegacyNewDecWithPrec(3, 3)

func TestComputeSwap(t *testing.T) {
	res, err := xyk.ComputeSwap(math.NewInt(30_000_000_000), math.NewInt(20_000_000_000), math.NewInt(1_500_000_000), fee30bps)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(2_857_142), res.CommissionAmount)
	require.Equal(t, math.NewInt(952_380_952-2_857_142), res.ReturnAmount)
	require.Equal(t, math.NewInt(47_619_047), res.SpreadAmount)
}

func TestComputeSwapRejectsEmptyPoolAndZeroAmount(t *testing.T) {
	_, err := xyk.ComputeSwap(math.ZeroInt(), math.NewInt(10), math.NewInt(1), fee30bps)
	require.ErrorIs(t, err, fixedpoint.ErrEmptyPool)
	require.Contains(t, err.Error(), "One of the pools is empty")

	_, err = xyk.ComputeSwap(math.NewInt(10), math.NewInt(10), math.ZeroInt(), fee30bps)
	require.ErrorIs(t, err, fixedpoint.ErrZeroAmount)
}

func TestComputeOfferAmount(t *testing.T) {
	res, err := xyk.ComputeOfferAmount(math.NewInt(30_000_000_000), math.NewInt(20_000_000_000), math.NewInt(949_523_810), fee30bps)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(1_499_999_999), res.OfferAmount)
	require.Equal(t, math.NewInt(47_619_047), res.SpreadAmount)
	require.Equal(t, math.NewInt(2_857_142), res.CommissionAmount)

	_, err = xyk.ComputeOfferAmount(math.NewInt(100), math.NewInt(100), math.NewInt(100), fee30bps)
	require.ErrorIs(t, err, fixedpoint.ErrNotEnoughLiquidity)
}

func TestInitialShare(t *testing.T) {
	e18 := math.NewIntWithDecimal(1, 18)
	share, err := xyk.InitialShare(e18.MulRaw(100), e18.MulRaw(100))
	require.NoError(t, err)
	require.Equal(t, e18.MulRaw(100).SubRaw(1_000), share)

	_, err = xyk.InitialShare(math.NewInt(1_000), math.NewInt(1_000))
	require.ErrorIs(t, err, fixedpoint.ErrMinimumLiquidity)
}

func TestProvideShareKeepsExcessAsDonation(t *testing.T) {
	e18 := math.NewIntWithDecimal(1, 18)
	share, err := xyk.ProvideShare(
		[2]math.Int{e18.MulRaw(200), e18.MulRaw(100)},
		[2]math.Int{e18.MulRaw(200), e18.MulRaw(200)},
		e18.MulRaw(100),
	)
	require.NoError(t, err)
	require.Equal(t, e18.MulRaw(50), share)
}

func TestSwapNeverDecreasesK(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		x := math.NewInt(rapid.Int64Range(1_000, 1_000_000_000_000).Draw(t, "x"))
		y := math.NewInt(rapid.Int64Range(1_000, 1_000_000_000_000).Draw(t, "y"))
		offer := math.NewInt(rapid.Int64Range(1, 1_000_000_000_000).Draw(t, "offer"))

		res, err := xyk.ComputeSwap(x, y, offer, math.LegacyZeroDec())
		require.NoError(t, err)
		require.True(t, res.ReturnAmount.LT(y))

		before, err := xyk.Invariant(x, y)
		require.NoError(t, err)
		after, err := xyk.Invariant(x.Add(offer), y.Sub(res.ReturnAmount))
		require.NoError(t, err)
		require.True(t, after.GTE(before), "k decreased: %s -> %s", before, after)
	})
}

func TestSwapRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		x := math.NewInt(rapid.Int64Range(1_000_000, 1_000_000_000_000).Draw(t, "x"))
		// keep x/y <= 10 so one unit of ask is never worth more than a few units of offer
		y := x.MulRaw(rapid.Int64Range(1, 100).Draw(t, "ratio")).QuoRaw(10)
		offer := math.NewInt(rapid.Int64Range(10_000, x.Int64()/10).Draw(t, "offer"))

		res, err := xyk.ComputeSwap(x, y, offer, fee30bps)
		require.NoError(t, err)
		if res.ReturnAmount.IsZero() {
			return
		}
		rev, err := xyk.ComputeOfferAmount(x, y, res.ReturnAmount, fee30bps)
		require.NoError(t, err)

		diff := fixedpoint.DiffInt(rev.OfferAmount, offer)
		tolerance := math.MaxInt(math.NewInt(5), offer.QuoRaw(200))
		require.True(t, diff.LTE(tolerance), "offer %s, reverse %s", offer, rev.OfferAmount)
	})
}
