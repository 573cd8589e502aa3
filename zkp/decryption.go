// Package zkp implements the non-interactive, Fiat-Shamir zero-knowledge
// proofs used by the threshold Paillier and L2FHE layers: correctness of
// encryption, of a homomorphic multiplication, of a partial decryption, and
// the two range/relation proofs consumed by the signing protocol.
//
// Grounded on didiercrunch/paillier's PartialDecryptionZKP (decryption
// proof), crypto/mta's range-proof pattern (range/relation
// proofs) and crypto/dlnproof (auxiliary parameter consistency proof).
package zkp

import (
	"crypto/sha256"
	"math/big"

	"github.com/citp/ThresholdECDSA/common"
	"github.com/citp/ThresholdECDSA/paillier"
)

var (
	one  = big.NewInt(1)
	two  = big.NewInt(2)
	four = big.NewInt(4)
)

// DecryptionZKP proves that a partial decryption was produced honestly: the
// decryption server raised the ciphertext to its secret share exponent, as
// attested by the public verification key v_i = v^(delta*s_i). This is a
// Fiat-Shamir proof of equality of discrete logs,
// log_{c^4}(c_i^2) = log_v(v_i). Ported from didiercrunch/paillier's
// PartialDecryptionZKP.
type DecryptionZKP struct {
	paillier.PartialDecryption
	C *big.Int // the ciphertext this is a partial decryption of
	E *big.Int // Fiat-Shamir challenge
	Z *big.Int // response
}

func decryptionChallenge(a, b, c4, ci2 *big.Int) *big.Int {
	h := sha256.New()
	h.Write(a.Bytes())
	h.Write(b.Bytes())
	h.Write(c4.Bytes())
	h.Write(ci2.Bytes())
	return new(big.Int).SetBytes(h.Sum(nil))
}

// ProvePartialDecryption computes share's partial decryption of c together
// with a DecryptionZKP attesting it was computed honestly.
func ProvePartialDecryption(share *paillier.ThresholdPrivateShare, c *big.Int) *DecryptionZKP {
	pd := share.Decrypt(c)
	n2 := share.NSquare()

	r := common.GetRandomPositiveInt(n2)

	c4 := new(big.Int).Exp(c, four, nil)
	a := new(big.Int).Exp(c4, r, n2)
	b := new(big.Int).Exp(share.V, r, n2)
	ci2 := new(big.Int).Exp(pd.Decryption, two, nil)

	e := decryptionChallenge(a, b, c4, ci2)

	z := new(big.Int).Mul(e, share.Delta())
	z.Mul(z, share.Share)
	z.Add(z, r)

	return &DecryptionZKP{PartialDecryption: *pd, C: c, E: e, Z: z}
}

// Verify checks the proof against the threshold public key pub, for the
// server index pd.Id (servers are indexed from 1, so Vi[pd.Id-1] is this
// server's verification key).
func (pf *DecryptionZKP) Verify(pub *paillier.ThresholdPublicKey) bool {
	if pf == nil || pf.Id < 1 || pf.Id > len(pub.Vi) {
		return false
	}
	n2 := pub.NSquare()
	c4 := new(big.Int).Exp(pf.C, four, nil)
	decryption2 := new(big.Int).Exp(pf.Decryption, two, nil)

	a1 := new(big.Int).Exp(c4, pf.Z, n2)
	a2 := new(big.Int).Exp(decryption2, pf.E, n2)
	a2.ModInverse(a2, n2)
	a := new(big.Int).Mod(new(big.Int).Mul(a1, a2), n2)

	vi := pub.Vi[pf.Id-1]
	b1 := new(big.Int).Exp(pub.V, pf.Z, n2)
	b2 := new(big.Int).Exp(vi, pf.E, n2)
	b2.ModInverse(b2, n2)
	b := new(big.Int).Mod(new(big.Int).Mul(b1, b2), n2)

	expectedE := decryptionChallenge(a, b, c4, decryption2)
	return pf.E.Cmp(expectedE) == 0
}
