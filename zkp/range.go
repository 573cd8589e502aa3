package zkp

import (
	"math/big"

	"github.com/citp/ThresholdECDSA/common"
	"github.com/citp/ThresholdECDSA/paillier"
)

// RangeProof proves knowledge of the plaintext m encrypted in c together
// with a bound on it, for some bound small relative to pk.N (in the signing
// protocol, bound is q^k for the curve order q and a small k), without
// revealing m or the encryption randomness r. Verify enforces the bound
// only through its check S1 <= bound^3 on the response s1 = alpha + e*m:
// an honest proof for m in [0, bound) always passes, and a proof for a
// plaintext between bound and bound^3 can pass as well.
//
// Ported from crypto/mta/range_proof.go's ProveRangeAlice,
// generalized to an arbitrary bound rather than the hard-coded q^3 of
// GG18's MtA.
type RangeProof struct {
	Z, U, W, S, S1, S2 *big.Int
}

// ProveRange builds the proof for c = pk.EncryptWithRandomness(m, r) with
// 0 <= m < bound, binding it to aux's auxiliary RSA modulus. It does not
// check m against bound itself.
func ProveRange(pk *paillier.PublicKey, aux *AuxiliaryParameters, c, m, r, bound *big.Int) *RangeProof {
	bound3 := new(big.Int).Mul(bound, new(big.Int).Mul(bound, bound))
	boundNTilde := new(big.Int).Mul(bound, aux.NTilde)
	bound3NTilde := new(big.Int).Mul(bound3, aux.NTilde)

	alpha := common.GetRandomPositiveInt(bound3)
	beta := common.GetRandomPositiveRelativelyPrimeInt(pk.N)
	gamma := common.GetRandomPositiveInt(bound3NTilde)
	rho := common.GetRandomPositiveInt(boundNTilde)

	modNTilde := common.ModInt(aux.NTilde)
	z := modNTilde.Exp(aux.H1, m)
	z = modNTilde.Mul(z, modNTilde.Exp(aux.H2, rho))

	modNSquared := common.ModInt(pk.NSquare())
	u := modNSquared.Exp(pk.Gamma(), alpha)
	u = modNSquared.Mul(u, modNSquared.Exp(beta, pk.N))

	w := modNTilde.Exp(aux.H1, alpha)
	w = modNTilde.Mul(w, modNTilde.Exp(aux.H2, gamma))

	e := rangeChallenge(bound, pk.AsInts(), c, z, u, w)

	modN := common.ModInt(pk.N)
	s := modN.Exp(r, e)
	s = modN.Mul(s, beta)

	s1 := new(big.Int).Add(alpha, new(big.Int).Mul(e, m))
	s2 := new(big.Int).Add(gamma, new(big.Int).Mul(e, rho))

	return &RangeProof{Z: z, U: u, W: w, S: s, S1: s1, S2: s2}
}

func rangeChallenge(bound *big.Int, pkInts []*big.Int, rest ...*big.Int) *big.Int {
	args := append([]*big.Int{bound}, pkInts...)
	args = append(args, rest...)
	return common.RejectionSample(bound, common.SHA256i(args...))
}

// Verify checks the proof against pk, aux and ciphertext c for the same
// bound used to produce it.
func (pf *RangeProof) Verify(pk *paillier.PublicKey, aux *AuxiliaryParameters, c, bound *big.Int) bool {
	if pf == nil || pf.Z == nil || pf.U == nil || pf.W == nil || pf.S == nil || pf.S1 == nil || pf.S2 == nil {
		return false
	}
	bound3 := new(big.Int).Mul(bound, new(big.Int).Mul(bound, bound))
	if pf.S1.Cmp(bound3) > 0 {
		return false
	}
	if gcd := new(big.Int).GCD(nil, nil, pf.S, pk.N); pf.S.Sign() == 0 || gcd.Cmp(one) != 0 {
		return false
	}

	e := rangeChallenge(bound, pk.AsInts(), c, pf.Z, pf.U, pf.W)
	minusE := new(big.Int).Neg(e)

	n2 := pk.NSquare()
	modN2 := common.ModInt(n2)
	cExpMinusE := modN2.Exp(c, minusE)
	sExpN := modN2.Exp(pf.S, pk.N)
	gammaExpS1 := modN2.Exp(pk.Gamma(), pf.S1)
	products := modN2.Mul(gammaExpS1, sExpN)
	products = modN2.Mul(products, cExpMinusE)
	if pf.U.Cmp(products) != 0 {
		return false
	}

	modNTilde := common.ModInt(aux.NTilde)
	h1ExpS1 := modNTilde.Exp(aux.H1, pf.S1)
	h2ExpS2 := modNTilde.Exp(aux.H2, pf.S2)
	zExpMinusE := modNTilde.Exp(pf.Z, minusE)
	products = modNTilde.Mul(h1ExpS1, h2ExpS2)
	products = modNTilde.Mul(products, zExpMinusE)
	return pf.W.Cmp(products) == 0
}
