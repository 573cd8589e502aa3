package zkp

import (
	"math/big"

	"github.com/citp/ThresholdECDSA/common"
)

// AuxiliaryParameterProofIterations is the number of parallel Schnorr
// repetitions used to bring the soundness error down to 2^-Iterations,
// matching crypto/dlnproof/proof.go.
const AuxiliaryParameterProofIterations = 128

// AuxiliaryParameterProof proves knowledge of the discrete log x with
// h2 = h1^x mod NTilde, establishing that h1 and h2 generate the same
// subgroup of Z_NTilde* (so no one, not even the party that generated
// NTilde, can choose h1/h2 to bias the range proofs that use them). Ported
// from crypto/dlnproof/proof.go.
type AuxiliaryParameterProof struct {
	Alpha [AuxiliaryParameterProofIterations]*big.Int
	T     [AuxiliaryParameterProofIterations]*big.Int
}

func proveAuxiliaryParameters(secret *auxiliaryParamsSecret) *AuxiliaryParameterProof {
	pq := new(big.Int).Mul(secret.p, secret.q)
	modNTilde, modPQ := common.ModInt(secret.NTilde), common.ModInt(pq)

	a := make([]*big.Int, AuxiliaryParameterProofIterations)
	var alpha [AuxiliaryParameterProofIterations]*big.Int
	for i := range alpha {
		a[i] = common.GetRandomPositiveInt(pq)
		alpha[i] = modNTilde.Exp(secret.H1, a[i])
	}

	msg := append([]*big.Int{secret.H1, secret.H2, secret.NTilde}, alpha[:]...)
	c := common.SHA256i(msg...)

	var t [AuxiliaryParameterProofIterations]*big.Int
	for i := range t {
		ci := new(big.Int).SetInt64(int64(c.Bit(i)))
		t[i] = modPQ.Add(a[i], modPQ.Mul(ci, secret.x))
	}
	return &AuxiliaryParameterProof{Alpha: alpha, T: t}
}

// Verify checks that h1 and h2 generate the same subgroup of Z_nTilde*.
func (pf *AuxiliaryParameterProof) Verify(nTilde, h1, h2 *big.Int) bool {
	if pf == nil || nTilde == nil || nTilde.Sign() != 1 {
		return false
	}
	modNTilde := common.ModInt(nTilde)
	h1m := new(big.Int).Mod(h1, nTilde)
	h2m := new(big.Int).Mod(h2, nTilde)
	if !inRange(h1m, nTilde) || !inRange(h2m, nTilde) || h1m.Cmp(h2m) == 0 {
		return false
	}
	for i := 0; i < AuxiliaryParameterProofIterations; i++ {
		if pf.Alpha[i] == nil || pf.T[i] == nil || !inRange(pf.T[i], nTilde) || !inRange(pf.Alpha[i], nTilde) {
			return false
		}
	}
	msg := append([]*big.Int{h1, h2, nTilde}, pf.Alpha[:]...)
	c := common.SHA256i(msg...)
	for i := 0; i < AuxiliaryParameterProofIterations; i++ {
		ci := new(big.Int).SetInt64(int64(c.Bit(i)))
		lhs := modNTilde.Exp(h1, pf.T[i])
		rhs := modNTilde.Mul(pf.Alpha[i], modNTilde.Exp(h2, ci))
		if lhs.Cmp(rhs) != 0 {
			return false
		}
	}
	return true
}

func inRange(v, n *big.Int) bool {
	return v.Cmp(one) > 0 && v.Cmp(n) < 0
}
