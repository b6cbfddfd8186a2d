// Package fixedpoint is the deterministic arithmetic kernel shared by every pool flavor.
//
// Decimals are math.LegacyDec values (18 fractional digits, 256-bit range) and token amounts are
// math.Int values in the smallest unit of the token. Conversions between the two carry an explicit
// precision, and every rounding step truncates toward zero.
package fixedpoint
