package pcl

import (
	"cosmossdk.io/math"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/fixedpoint"
)

// invariant evaluates f(D, x) = K*D*(x0+x1) + x0*x1 - K*D^2 - D^2/4 where
// K = A*gamma^2*K0/(gamma+1-K0)^2 and K0 = 4*x0*x1/D^2.
func invariant(d math.LegacyDec, x [NCoins]math.LegacyDec, ag AmpGamma) math.LegacyDec {
	_, k := coefficients(d, x, ag)
	d2 := d.MulTruncate(d)
	return k.MulTruncate(d).MulTruncate(x[0].Add(x[1])).
		Add(x[0].MulTruncate(x[1])).
		Sub(k.MulTruncate(d2)).
		Sub(d2.QuoTruncate(four))
}

// curvature is A*gamma^2*(gamma+1+K0)/(gamma+1-K0)^3, the common factor of dK/dD and dK/dx.
func curvature(k0 math.LegacyDec, ag AmpGamma) math.LegacyDec {
	g1 := ag.Gamma.Add(math.LegacyOneDec())
	g1k0 := g1.Sub(k0)
	aGammaSq := ag.Ann().MulTruncate(ag.Gamma).MulTruncate(ag.Gamma)
	return aGammaSq.MulTruncate(g1.Add(k0)).QuoTruncate(g1k0).QuoTruncate(g1k0).QuoTruncate(g1k0)
}

func coefficients(d math.LegacyDec, x [NCoins]math.LegacyDec, ag AmpGamma) (k0, k math.LegacyDec) {
	d2 := d.MulTruncate(d)
	k0 = x[0].MulTruncate(x[1]).MulTruncate(four).QuoTruncate(d2)
	g1k0 := ag.Gamma.Add(math.LegacyOneDec()).Sub(k0)
	k = ag.Ann().MulTruncate(ag.Gamma).MulTruncate(ag.Gamma).MulTruncate(k0).QuoTruncate(g1k0.MulTruncate(g1k0))
	return k0, k
}

// derivativeD is df/dD. With K' = dK/dD, K'*D = -2*K0*curvature.
func derivativeD(d math.LegacyDec, x [NCoins]math.LegacyDec, ag AmpGamma) math.LegacyDec {
	k0, k := coefficients(d, x, ag)
	kdD := k0.MulInt64(2).MulTruncate(curvature(k0, ag)).Neg()
	return kdD.Add(k).MulTruncate(x[0].Add(x[1])).
		Sub(kdD.Add(k.MulInt64(2)).MulTruncate(d)).
		Sub(d.QuoInt64(2))
}

// derivativeX is df/dx_i. With K' = dK/dx_i, K'*D^2 = 4*x_r*curvature.
func derivativeX(d math.LegacyDec, x [NCoins]math.LegacyDec, ag AmpGamma, i int) math.LegacyDec {
	xr := x[1-i]
	k0, k := coefficients(d, x, ag)
	kxD2 := xr.MulTruncate(four).MulTruncate(curvature(k0, ag))
	return kxD2.MulTruncate(x[0].Add(x[1])).QuoTruncate(d).
		Add(k.MulTruncate(d)).
		Add(xr).
		Sub(kxD2)
}

func converged(next, prev math.LegacyDec) bool {
	tol := fixedpoint.MaxDec(next.Abs().MulTruncate(relTol), absTol)
	return fixedpoint.Diff(next, prev).LTE(tol)
}

// CalcD solves the invariant for internal balances x (asset 1 already multiplied by price_scale).
func CalcD(x [NCoins]math.LegacyDec, ag AmpGamma) (d math.LegacyDec, err error) {
	defer fixedpoint.Recover(&err)

	if !x[0].IsPositive() || !x[1].IsPositive() {
		return math.LegacyDec{}, fixedpoint.ErrEmptyPool
	}
	prev, err := fixedpoint.Sqrt(x[0].MulTruncate(x[1]))
	if err != nil {
		return math.LegacyDec{}, err
	}
	prev = prev.MulInt64(2)
	for i := 0; i < MaxIterations; i++ {
		df := derivativeD(prev, x, ag)
		if df.IsZero() {
			return math.LegacyDec{}, fixedpoint.ErrDivisionByZero.Wrap("pcl D derivative")
		}
		d = prev.Sub(invariant(prev, x, ag).QuoTruncate(df))
		if !d.IsPositive() {
			return math.LegacyDec{}, fixedpoint.ErrConvergence.Wrap("pcl D left the positive domain")
		}
		if converged(d, prev) {
			return d, nil
		}
		prev = d
	}
	return math.LegacyDec{}, fixedpoint.ErrConvergence.Wrap("pcl D")
}

// CalcY returns the internal balance of asset j that keeps the invariant at d given the other
// balance in x.
func CalcY(x [NCoins]math.LegacyDec, d math.LegacyDec, ag AmpGamma, j int) (y math.LegacyDec, err error) {
	defer fixedpoint.Recover(&err)

	other := x[1-j]
	if !other.IsPositive() {
		return math.LegacyDec{}, fixedpoint.ErrEmptyPool
	}
	xs := x
	prev := d.MulTruncate(d).QuoTruncate(four.MulTruncate(other))
	xs[j] = prev
	for i := 0; i < MaxIterations; i++ {
		df := derivativeX(d, xs, ag, j)
		if df.IsZero() {
			return math.LegacyDec{}, fixedpoint.ErrDivisionByZero.Wrap("pcl y derivative")
		}
		y = prev.Sub(invariant(d, xs, ag).QuoTruncate(df))
		if !y.IsPositive() {
			return math.LegacyDec{}, fixedpoint.ErrConvergence.Wrap("pcl y left the positive domain")
		}
		if converged(y, prev) {
			return y, nil
		}
		xs[j] = y
		prev = y
	}
	return math.LegacyDec{}, fixedpoint.ErrConvergence.Wrap("pcl y")
}

// GetXcp returns the constant-product reference D / (2*sqrt(price_scale)).
func GetXcp(d, priceScale math.LegacyDec) (xcp math.LegacyDec, err error) {
	defer fixedpoint.Recover(&err)
	sqrtPS, err := fixedpoint.Sqrt(priceScale)
	if err != nil {
		return math.LegacyDec{}, err
	}
	if sqrtPS.IsZero() {
		return math.LegacyDec{}, fixedpoint.ErrDivisionByZero.Wrap("price scale")
	}
	return d.QuoTruncate(sqrtPS.MulInt64(2)), nil
}
