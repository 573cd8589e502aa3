package common

import "math/big"

var (
	zero  = big.NewInt(0)
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
	four  = big.NewInt(4)
)

// modInt is a *big.Int that performs all of its arithmetic with modular
// reduction. Ported from the common/int.go idiom: it turns long
// chains of `new(big.Int).Mul(...).Mod(...)` into short, readable calls.
type modInt big.Int

func ModInt(mod *big.Int) *modInt {
	return (*modInt)(mod)
}

func (mi *modInt) i() *big.Int {
	return (*big.Int)(mi)
}

func (mi *modInt) Add(x, y *big.Int) *big.Int {
	i := new(big.Int).Add(x, y)
	return i.Mod(i, mi.i())
}

func (mi *modInt) Sub(x, y *big.Int) *big.Int {
	i := new(big.Int).Sub(x, y)
	return i.Mod(i, mi.i())
}

func (mi *modInt) Mul(x, y *big.Int) *big.Int {
	i := new(big.Int).Mul(x, y)
	return i.Mod(i, mi.i())
}

func (mi *modInt) Div(x, y *big.Int) *big.Int {
	i := new(big.Int).Div(x, y)
	return i.Mod(i, mi.i())
}

func (mi *modInt) Exp(x, y *big.Int) *big.Int {
	if y.Sign() < 0 {
		inv := new(big.Int).Exp(x, new(big.Int).Neg(y), mi.i())
		return new(big.Int).ModInverse(inv, mi.i())
	}
	return new(big.Int).Exp(x, y, mi.i())
}

func (mi *modInt) Inverse(g *big.Int) *big.Int {
	return new(big.Int).ModInverse(g, mi.i())
}

// IsInInterval reports whether 0 <= b < bound.
func IsInInterval(b, bound *big.Int) bool {
	return b.Cmp(bound) < 0 && b.Sign() >= 0
}
