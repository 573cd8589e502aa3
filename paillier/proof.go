package paillier

import (
	"errors"
	"fmt"
	gmath "math"
	"math/big"
	"strconv"

	"github.com/otiai10/primes"

	"github.com/citp/ThresholdECDSA/common"
)

const (
	// ProofIters is the number of challenges used by Proof, matching
	// crypto/paillier/paillier.go.
	ProofIters        = 13
	verifyPrimesUntil = 1000 // Verify uses primes < 1000
)

// Proof is a Gennaro-Micciancio-Rabin style non-interactive statistical
// zero-knowledge proof that N is a product of two (quasi-safe) primes of
// the expected form, without revealing them. A dealer distributing a
// threshold key can attach this to its public key so every decryption
// server can check N is well-formed before trusting it.
//
// Ported near-verbatim from crypto/paillier/paillier.go,
// generalized to bind the challenge transcript to arbitrary session context
// bytes instead of a hard-coded ECDSA public key, since this package has no
// dependency on curve arithmetic.
type Proof [ProofIters]*big.Int

func init() {
	// prime the small-prime cache used by Verify
	_ = primes.Globally.Until(verifyPrimesUntil)
}

// Prove computes the well-formedness proof for sk, binding the transcript
// to sessionContext (e.g. a nonce or session id) so proofs cannot be
// replayed across sessions.
func (sk *PrivateKey) Prove(sessionContext []byte) Proof {
	var pi Proof
	xs := generateXs(ProofIters, sessionContext, sk.N)
	mInv := new(big.Int).ModInverse(sk.N, sk.PhiN)
	for i := 0; i < ProofIters; i++ {
		pi[i] = new(big.Int).Exp(xs[i], mInv, sk.N)
	}
	return pi
}

// Verify checks that pf is a valid well-formedness proof for the public
// modulus pkN, under the same sessionContext used to produce it.
//
// The small-prime trial division and the challenge-response check depend on
// nothing but pkN and sessionContext, so they run concurrently on their own
// goroutines and report back over channels, the same split
// crypto/paillier/paillier.go uses for this proof's Verify.
func (pf Proof) Verify(pkN *big.Int, sessionContext []byte) (bool, error) {
	pch := make(chan bool, 1)
	go func() {
		primesList := primes.Until(verifyPrimesUntil).List() // uses cache primed in init()
		for _, prm := range primesList {
			if new(big.Int).Mod(pkN, big.NewInt(prm)).Cmp(zero) == 0 {
				pch <- false // N is divisible by a small prime
				return
			}
		}
		pch <- true
	}()

	type xResult struct {
		ok  bool
		err error
	}
	xch := make(chan xResult, 1)
	go func() {
		xs := generateXs(ProofIters, sessionContext, pkN)
		if len(xs) != ProofIters {
			xch <- xResult{false, fmt.Errorf("paillier proof verify: expected %d xs but got %d", ProofIters, len(xs))}
			return
		}
		for i, xi := range xs {
			xiModN := new(big.Int).Mod(xi, pkN)
			yiExpN := new(big.Int).Exp(pf[i], pkN, pkN)
			if xiModN.Cmp(yiExpN) != 0 {
				xch <- xResult{false, nil}
				return
			}
		}
		xch <- xResult{true, nil}
	}()

	primeOK := <-pch
	xr := <-xch
	if xr.err != nil {
		return false, xr.err
	}
	return primeOK && xr.ok, nil
}

// generateXs derives ProofIters challenges from sessionContext and N by
// repeated hashing, rejecting any candidate outside Z_N*.
func generateXs(iters int, sessionContext []byte, n *big.Int) []*big.Int {
	nb := n.Bytes()
	bits := n.BitLen()
	blocks := int(gmath.Ceil(float64(bits) / 256))

	ret := make([]*big.Int, iters)
	i, attempt := 0, 0
	for i < iters {
		xi := make([]byte, 0, blocks*32)
		ib := []byte(strconv.Itoa(i))
		nb2 := []byte(strconv.Itoa(attempt))
		for j := 0; j < blocks; j++ {
			jb := []byte(strconv.Itoa(j))
			h := common.SHA256i(
				new(big.Int).SetBytes(ib),
				new(big.Int).SetBytes(jb),
				new(big.Int).SetBytes(nb2),
				new(big.Int).SetBytes(sessionContext),
				new(big.Int).SetBytes(nb),
			)
			hb := h.Bytes()
			if len(hb) < 32 {
				padded := make([]byte, 32)
				copy(padded[32-len(hb):], hb)
				hb = padded
			}
			xi = append(xi, hb...)
		}
		candidate := new(big.Int).SetBytes(xi)
		if common.IsNumberInMultiplicativeGroup(n, candidate) {
			ret[i] = candidate
			i++
		} else {
			attempt++
		}
		if attempt > 1<<20 {
			panic(errors.New("generateXs: exceeded maximum resample attempts"))
		}
	}
	return ret
}
