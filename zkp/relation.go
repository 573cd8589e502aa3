package zkp

import (
	"math/big"

	"github.com/citp/ThresholdECDSA/common"
	"github.com/citp/ThresholdECDSA/crypto"
	"github.com/citp/ThresholdECDSA/paillier"
)

// RelationProof proves that the ciphertext c2 encrypts x*a + gamma, where a
// is the plaintext of the public ciphertext c1, x is a curve scalar also
// used to produce the public point X = x*G, and gamma is fresh Paillier
// blinding — all without revealing x, gamma, or the Paillier randomness
// used to produce c2. This is the statement the signing protocol needs
// whenever one party's secret scalar must be shown consistent with both an
// EC commitment and a Paillier ciphertext derived from a peer's encrypted
// value.
//
// Ported from crypto/mta/proofs.go's ProveBobWC, dropping the
// "without check" (X == nil) mode: this package only ever needs the
// EC-consistency variant.
type RelationProof struct {
	Z, ZPrime, T, V, W, S, S1, S2, T1, T2 *big.Int
	U                                     *crypto.ECPoint
}

// ProveRelation proves that c2 = pk.Add(pk.Multiply(x, c1), pk.Encrypt(gamma))
// up to the randomness r folded into c2, and that X = x*G.
func ProveRelation(pk *paillier.PublicKey, aux *AuxiliaryParameters, c1, c2, x, gamma, r, bound *big.Int, xPoint *crypto.ECPoint) *RelationProof {
	q := xPoint.Curve().Params().N
	bound3 := new(big.Int).Mul(bound, new(big.Int).Mul(bound, bound))
	qNTilde := new(big.Int).Mul(q, aux.NTilde)
	bound3NTilde := new(big.Int).Mul(bound3, aux.NTilde)

	alpha := common.GetRandomPositiveInt(bound3)
	rho := common.GetRandomPositiveInt(qNTilde)
	sigma := common.GetRandomPositiveInt(qNTilde)
	tau := common.GetRandomPositiveInt(qNTilde)
	rhoPrime := common.GetRandomPositiveInt(bound3NTilde)
	beta := common.GetRandomPositiveRelativelyPrimeInt(pk.N)
	eta := common.GetRandomPositiveRelativelyPrimeInt(pk.N)

	u := crypto.ScalarBaseMult(xPoint.Curve(), alpha)

	modNTilde := common.ModInt(aux.NTilde)
	z := modNTilde.Exp(aux.H1, x)
	z = modNTilde.Mul(z, modNTilde.Exp(aux.H2, rho))

	zPrime := modNTilde.Exp(aux.H1, alpha)
	zPrime = modNTilde.Mul(zPrime, modNTilde.Exp(aux.H2, rhoPrime))

	t := modNTilde.Exp(aux.H1, gamma)
	t = modNTilde.Mul(t, modNTilde.Exp(aux.H2, sigma))

	n2 := pk.NSquare()
	modN2 := common.ModInt(n2)
	v := modN2.Exp(c1, alpha)
	v = modN2.Mul(v, modN2.Exp(pk.Gamma(), eta))
	v = modN2.Mul(v, modN2.Exp(beta, pk.N))

	w := modNTilde.Exp(aux.H1, eta)
	w = modNTilde.Mul(w, modNTilde.Exp(aux.H2, tau))

	e := relationChallenge(q, pk.AsInts(), xPoint, c1, c2, u, z, zPrime, t, v, w)

	modN := common.ModInt(pk.N)
	s := modN.Exp(r, e)
	s = modN.Mul(s, beta)

	s1 := new(big.Int).Add(alpha, new(big.Int).Mul(e, x))
	s2 := new(big.Int).Add(rhoPrime, new(big.Int).Mul(e, rho))
	t1 := new(big.Int).Add(eta, new(big.Int).Mul(e, gamma))
	t2 := new(big.Int).Add(tau, new(big.Int).Mul(e, sigma))

	return &RelationProof{Z: z, ZPrime: zPrime, T: t, V: v, W: w, S: s, S1: s1, S2: s2, T1: t1, T2: t2, U: u}
}

func relationChallenge(q *big.Int, pkInts []*big.Int, xPoint *crypto.ECPoint, c1, c2 *big.Int, u *crypto.ECPoint, z, zPrime, t, v, w *big.Int) *big.Int {
	args := append([]*big.Int{}, pkInts...)
	args = append(args, xPoint.X(), xPoint.Y(), c1, c2, u.X(), u.Y(), z, zPrime, t, v, w)
	return common.RejectionSample(q, common.SHA256i(args...))
}

// Verify checks the proof against pk, aux, the public ciphertexts c1, c2
// and the public point xPoint, for the same bound used to produce it.
func (pf *RelationProof) Verify(pk *paillier.PublicKey, aux *AuxiliaryParameters, c1, c2, bound *big.Int, xPoint *crypto.ECPoint) bool {
	if pf == nil || pf.U == nil {
		return false
	}
	if pf.S.Sign() == 0 {
		return false
	}
	if gcd := new(big.Int).GCD(nil, nil, pf.S, pk.N); gcd.Cmp(one) != 0 {
		return false
	}
	if pf.V.Sign() == 0 {
		return false
	}

	q := xPoint.Curve().Params().N
	bound3 := new(big.Int).Mul(bound, new(big.Int).Mul(bound, bound))
	if pf.S1.Cmp(bound3) > 0 {
		return false
	}

	e := relationChallenge(q, pk.AsInts(), xPoint, c1, c2, pf.U, pf.Z, pf.ZPrime, pf.T, pf.V, pf.W)

	s1ModQ := new(big.Int).Mod(pf.S1, q)
	gS1 := crypto.ScalarBaseMult(xPoint.Curve(), s1ModQ)
	xEU, err := xPoint.ScalarMult(e).Add(pf.U)
	if err != nil || !gS1.Equals(xEU) {
		return false
	}

	modNTilde := common.ModInt(aux.NTilde)
	{
		left := modNTilde.Mul(modNTilde.Exp(aux.H1, pf.S1), modNTilde.Exp(aux.H2, pf.S2))
		right := modNTilde.Mul(modNTilde.Exp(pf.Z, e), pf.ZPrime)
		if left.Cmp(right) != 0 {
			return false
		}
	}
	{
		left := modNTilde.Mul(modNTilde.Exp(aux.H1, pf.T1), modNTilde.Exp(aux.H2, pf.T2))
		right := modNTilde.Mul(modNTilde.Exp(pf.T, e), pf.W)
		if left.Cmp(right) != 0 {
			return false
		}
	}

	n2 := pk.NSquare()
	modN2 := common.ModInt(n2)
	left := modN2.Mul(modN2.Exp(c1, pf.S1), modN2.Exp(pf.S, pk.N))
	left = modN2.Mul(left, modN2.Exp(pk.Gamma(), pf.T1))
	right := modN2.Mul(modN2.Exp(c2, e), pf.V)
	return left.Cmp(right) == 0
}
