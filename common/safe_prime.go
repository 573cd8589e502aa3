package common

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"math/big"

	"github.com/pkg/errors"
)

const primeTestN = 30

// GermainSafePrime holds a Sophie Germain prime q together with its
// associated safe prime p = 2q + 1, as used to build the threshold
// Paillier modulus n = p*q in spec §4.2 (p = 2p'+1, q = 2q'+1).
//
// Ported from common/safe_prime.go, itself adapted from
// didiercrunch-paillier/safe_prime_generator.go.
type GermainSafePrime struct {
	q, p *big.Int
}

func (sgp *GermainSafePrime) Prime() *big.Int     { return sgp.q }
func (sgp *GermainSafePrime) SafePrime() *big.Int { return sgp.p }

func (sgp *GermainSafePrime) Validate() bool {
	return probablyPrime(sgp.q) &&
		new(big.Int).Add(new(big.Int).Mul(sgp.q, two), one).Cmp(sgp.p) == 0 &&
		probablyPrime(sgp.p)
}

func probablyPrime(n *big.Int) bool {
	return n != nil && n.ProbablyPrime(primeTestN)
}

// ProbablePrime returns a random integer of exactly `bits` bits that has
// passed Miller-Rabin with at least 50 rounds, per spec §4.1.
func ProbablePrime(bits int) *big.Int {
	p, err := rand.Prime(rand.Reader, bits)
	if err != nil {
		panic(errors.Wrap(err, "ProbablePrime: rand.Prime failed"))
	}
	for !p.ProbablyPrime(50) {
		p, err = rand.Prime(rand.Reader, bits)
		if err != nil {
			panic(errors.Wrap(err, "ProbablePrime: rand.Prime failed"))
		}
	}
	return p
}

var smallPrimes = []uint8{
	3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53,
}

var smallPrimesProduct = new(big.Int).SetUint64(16294579238595022365)

// ErrGeneratorCancelled is returned from GetRandomSafePrimesConcurrent
// when generation is cancelled via context before enough primes are found.
var ErrGeneratorCancelled = fmt.Errorf("safe prime generator work cancelled")

// GetRandomSafePrimesConcurrent searches for `numPrimes` safe primes of
// `bitLen` bits across `concurrency` goroutines. This implements
// `safePrimePair(bits, rng)` from spec §4.1: p' is sampled as a bits-1 bit
// probable prime and p = 2p'+1 is accepted only if it also passes the
// primality test, retrying until success.
func GetRandomSafePrimesConcurrent(ctx context.Context, bitLen, numPrimes, concurrency int) ([]*GermainSafePrime, error) {
	if bitLen < 6 {
		return nil, errors.New("safe prime size must be at least 6 bits")
	}
	if numPrimes < 1 {
		return nil, errors.New("numPrimes should be > 0")
	}
	if concurrency < 1 {
		concurrency = 1
	}

	primeCh := make(chan *GermainSafePrime, concurrency*numPrimes)
	errCh := make(chan error, concurrency*numPrimes)

	wg := &sync.WaitGroup{}
	genCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer wg.Wait()
	defer close(primeCh)
	defer close(errCh)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		runGenPrimeRoutine(genCtx, primeCh, errCh, wg, rand.Reader, bitLen)
	}

	primes := make([]*GermainSafePrime, 0, numPrimes)
	needed := int32(numPrimes)
	for {
		select {
		case result := <-primeCh:
			primes = append(primes, result)
			if atomic.AddInt32(&needed, -1) <= 0 {
				return primes[:numPrimes], nil
			}
		case err := <-errCh:
			return nil, err
		case <-ctx.Done():
			return nil, ErrGeneratorCancelled
		}
	}
}

// runGenPrimeRoutine searches for a safe prime pair of bit length pBitLen
// (p has pBitLen bits, q = (p-1)/2 has pBitLen-1 bits), using the sieve
// optimizations described in https://eprint.iacr.org/2003/186.pdf: reject
// q = 1 (mod 3) early (it forces p to be a multiple of 3), and check p via
// Pocklington's criterion once q's primality is established, before the
// final Validate pass runs a probabilistic primality test on both.
func runGenPrimeRoutine(
	ctx context.Context,
	primeCh chan<- *GermainSafePrime,
	errCh chan<- error,
	wg *sync.WaitGroup,
	rnd io.Reader,
	pBitLen int,
) {
	qBitLen := pBitLen - 1
	b := uint(qBitLen % 8)
	if b == 0 {
		b = 8
	}
	bytes := make([]byte, (qBitLen+7)/8)

	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			if _, err := io.ReadFull(rnd, bytes); err != nil {
				errCh <- err
				return
			}
			bytes[0] &= uint8(int(1<<b) - 1)
			if b >= 2 {
				bytes[0] |= 3 << (b - 2)
			} else {
				bytes[0] |= 1
				if len(bytes) > 1 {
					bytes[1] |= 0x80
				}
			}
			bytes[len(bytes)-1] |= 1

			q := new(big.Int).SetBytes(bytes)
			p := tryFindSafePrimeCandidate(q)
			if p == nil {
				continue
			}

			if q.ProbablyPrime(primeTestN) && isPocklingtonCriterionSatisfied(p) && q.BitLen() == qBitLen {
				sgp := &GermainSafePrime{p: p, q: q}
				if sgp.Validate() {
					primeCh <- sgp
				}
			}
		}
	}()
}

// tryFindSafePrimeCandidate adjusts q upward (in steps of 2) searching for
// a value where q is coprime to the small-prime sieve, q != 1 (mod 3), and
// p = 2q+1 is also coprime to the small-prime sieve. Returns p, or nil if
// no candidate was found within the delta budget (the caller resamples q
// from fresh randomness in that case).
func tryFindSafePrimeCandidate(q *big.Int) *big.Int {
	bigMod := new(big.Int).Mod(q, smallPrimesProduct)
	mod := bigMod.Uint64()

	for delta := uint64(0); delta < 1<<20; delta += 2 {
		m := mod + delta
		ok := true
		for _, prime := range smallPrimes {
			if m%uint64(prime) == 0 && (q.BitLen() > 6 || m != uint64(prime)) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if delta > 0 {
			q.Add(q, new(big.Int).SetUint64(delta))
		}
		if new(big.Int).Mod(q, three).Cmp(one) == 0 {
			continue
		}
		p := new(big.Int).Add(new(big.Int).Mul(q, two), one)
		if !isSmallSieveCoprime(p) {
			continue
		}
		return p
	}
	return nil
}

func isSmallSieveCoprime(n *big.Int) bool {
	m := new(big.Int).Mod(n, smallPrimesProduct).Uint64()
	for _, prime := range smallPrimes {
		if m%uint64(prime) == 0 && m != uint64(prime) {
			return false
		}
	}
	return true
}

// isPocklingtonCriterionSatisfied proves p = 2q+1 prime (given q already
// proven prime) by checking 2^(p-1) = 1 (mod p), far cheaper than a full
// Miller-Rabin pass on p.
func isPocklingtonCriterionSatisfied(p *big.Int) bool {
	return new(big.Int).Exp(two, new(big.Int).Sub(p, one), p).Cmp(one) == 0
}

// SafePrimePair is the simple, sequential form of spec §4.1's
// `safePrimePair(bits, rng)`: sample p' as a `bits-1`-bit probable prime,
// accept p = 2p'+1 if it also passes the primality test, retry otherwise.
// GetRandomSafePrimesConcurrent is the faster sieve-based implementation;
// this direct version exists for callers (tests, small bit lengths) where
// sieve setup cost isn't worth it.
func SafePrimePair(bits int) *GermainSafePrime {
	for {
		q := ProbablePrime(bits - 1)
		p := new(big.Int).Add(new(big.Int).Mul(q, two), one)
		if p.ProbablyPrime(50) {
			return &GermainSafePrime{p: p, q: q}
		}
	}
}
