package l2fhe

import (
	"math/big"

	"github.com/citp/ThresholdECDSA/paillier"
)

// L1PartialDecryption is one decryption server's contribution toward
// recovering the plaintext of an L1Ciphertext: its own id plus a partial
// decryption of A (in the clear, so no decryption needed) and of Beta.
type L1PartialDecryption struct {
	A    *big.Int
	Beta *paillier.PartialDecryption
}

// L2PartialDecryption is one decryption server's contribution toward
// recovering the plaintext of an L2Ciphertext: a partial decryption of
// Alpha, and for every cross-term pair, partial decryptions of both halves.
type L2PartialDecryption struct {
	Alpha *paillier.PartialDecryption
	B     []L1PairPartialDecryption
}

// L1PairPartialDecryption holds one server's partial decryptions of both
// halves of a single L2Ciphertext cross-term pair.
type L1PairPartialDecryption struct {
	Beta1, Beta2 *paillier.PartialDecryption
}

// PartialDecryptL1 computes share's contribution to decrypting c. A is
// already in the clear in an L1Ciphertext, so it passes through unchanged.
func PartialDecryptL1(share *paillier.ThresholdPrivateShare, c *L1Ciphertext) *L1PartialDecryption {
	return &L1PartialDecryption{A: c.A, Beta: share.Decrypt(c.Beta)}
}

// CombineL1 reconstructs the plaintext from at least the threshold number
// of L1PartialDecryption contributions.
func CombineL1(pub *paillier.ThresholdPublicKey, parts []*L1PartialDecryption) (*big.Int, error) {
	betaParts := make([]*paillier.PartialDecryption, len(parts))
	for i, p := range parts {
		betaParts[i] = p.Beta
	}
	b, err := pub.CombinePartialDecryptions(betaParts)
	if err != nil {
		return nil, err
	}
	a := parts[0].A
	return new(big.Int).Mod(new(big.Int).Add(a, b), pub.N), nil
}

// PartialDecryptL2 computes share's contribution to decrypting c.
func PartialDecryptL2(share *paillier.ThresholdPrivateShare, c *L2Ciphertext) *L2PartialDecryption {
	b := make([]L1PairPartialDecryption, len(c.B))
	for i, pair := range c.B {
		b[i] = L1PairPartialDecryption{
			Beta1: share.Decrypt(pair.Beta1),
			Beta2: share.Decrypt(pair.Beta2),
		}
	}
	return &L2PartialDecryption{Alpha: share.Decrypt(c.Alpha), B: b}
}

// CombineL2 reconstructs the plaintext from at least the threshold number
// of L2PartialDecryption contributions: Decrypt(alpha) +
// sum Decrypt(beta1)*Decrypt(beta2) mod n, combined component by component
// across servers per §4.4 and then across cross-term pairs.
func CombineL2(pub *paillier.ThresholdPublicKey, parts []*L2PartialDecryption) (*big.Int, error) {
	alphaParts := make([]*paillier.PartialDecryption, len(parts))
	for i, p := range parts {
		alphaParts[i] = p.Alpha
	}
	sum, err := pub.CombinePartialDecryptions(alphaParts)
	if err != nil {
		return nil, err
	}

	numPairs := len(parts[0].B)
	for j := 0; j < numPairs; j++ {
		beta1Parts := make([]*paillier.PartialDecryption, len(parts))
		beta2Parts := make([]*paillier.PartialDecryption, len(parts))
		for i, p := range parts {
			beta1Parts[i] = p.B[j].Beta1
			beta2Parts[i] = p.B[j].Beta2
		}
		b1, err := pub.CombinePartialDecryptions(beta1Parts)
		if err != nil {
			return nil, err
		}
		b2, err := pub.CombinePartialDecryptions(beta2Parts)
		if err != nil {
			return nil, err
		}
		sum.Add(sum, new(big.Int).Mul(b1, b2))
	}
	return sum.Mod(sum, pub.N), nil
}
