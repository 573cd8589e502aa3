package common

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/pkg/errors"
)

const mustGetRandomIntMaxBits = 8192

// MustGetRandomInt panics if it is unable to gather entropy from
// `rand.Reader` or when `bits` is out of range. Ported from
// common/random.go.
func MustGetRandomInt(bits int) *big.Int {
	if bits <= 0 || mustGetRandomIntMaxBits < bits {
		panic(fmt.Errorf("MustGetRandomInt: bits should be positive, non-zero and less than %d", mustGetRandomIntMaxBits))
	}
	max := new(big.Int).Sub(new(big.Int).Lsh(one, uint(bits)), one)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		panic(errors.Wrap(err, "rand.Int failure in MustGetRandomInt"))
	}
	return n
}

// GetRandomPositiveInt samples uniformly from [0, lessThan).
func GetRandomPositiveInt(lessThan *big.Int) *big.Int {
	if lessThan == nil || lessThan.Sign() <= 0 {
		return nil
	}
	for {
		try := MustGetRandomInt(lessThan.BitLen())
		if try.Cmp(lessThan) < 0 {
			return try
		}
	}
}

// GetRandomPositiveRelativelyPrimeInt samples uniformly from Z_n*, the
// multiplicative group of integers coprime to n. This is `randomModNStar`
// in spec §4.1.
func GetRandomPositiveRelativelyPrimeInt(n *big.Int) *big.Int {
	if n == nil || n.Sign() <= 0 {
		return nil
	}
	for {
		try := MustGetRandomInt(n.BitLen())
		if IsNumberInMultiplicativeGroup(n, try) {
			return try
		}
	}
}

// IsNumberInMultiplicativeGroup reports whether 1 <= v < n and gcd(v,n) = 1.
func IsNumberInMultiplicativeGroup(n, v *big.Int) bool {
	if n == nil || v == nil || n.Sign() <= 0 {
		return false
	}
	if v.Cmp(n) >= 0 || v.Cmp(one) < 0 {
		return false
	}
	gcd := new(big.Int).GCD(nil, nil, v, n)
	return gcd.Cmp(one) == 0
}

// GetRandomGeneratorOfTheQuadraticResidue returns a random generator of the
// group of squares mod n with high probability. Only valid when n is the
// product of two safe primes. Ported from
// common/random.go, itself ported from didiercrunch-paillier/utils.go.
func GetRandomGeneratorOfTheQuadraticResidue(n *big.Int) *big.Int {
	r := GetRandomPositiveRelativelyPrimeInt(n)
	return new(big.Int).Mod(new(big.Int).Mul(r, r), n)
}

// RandomModNSquaredStar samples uniformly from Z_{n^2}*.
func RandomModNSquaredStar(n *big.Int) *big.Int {
	nSquare := new(big.Int).Mul(n, n)
	return GetRandomPositiveRelativelyPrimeInt(nSquare)
}

// Factorial computes n! for small, non-negative n (the decryption-server
// count l in spec §4.2 is never large enough to need anything fancier).
func Factorial(n int) *big.Int {
	result := big.NewInt(1)
	for i := int64(2); i <= int64(n); i++ {
		result.Mul(result, big.NewInt(i))
	}
	return result
}
