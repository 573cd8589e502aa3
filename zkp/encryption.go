package zkp

import (
	"crypto/sha256"
	"math/big"

	"github.com/citp/ThresholdECDSA/common"
	"github.com/citp/ThresholdECDSA/paillier"
)

// EncryptionZKP proves knowledge of (alpha, s) such that c = (n+1)^alpha *
// s^n mod n^2, without revealing alpha or s. Used whenever a party must
// convince its peers that a ciphertext it broadcast actually encrypts a
// value it knows, rather than some unknown value it copied or adjusted from
// an earlier message.
//
// This is a straightforward Paillier knowledge-of-plaintext sigma protocol;
// crypto/mta/range_proof.go establishes the same commit
// (b = (n+1)^x * u^n), challenge, carry-adjusted response structure used
// here, generalized to a bare encryption claim without the GG18 range
// statement it also binds.
type EncryptionZKP struct {
	B *big.Int // commitment (n+1)^x * u^n mod n^2
	W *big.Int // response x + e*alpha mod n
	Z *big.Int // response u * s^e * (n+1)^t mod n^2, t = floor((x+e*alpha)/n)
}

func encryptionChallenge(c, b *big.Int) *big.Int {
	h := sha256.New()
	h.Write(c.Bytes())
	h.Write(b.Bytes())
	return new(big.Int).SetBytes(h.Sum(nil))
}

// ProveEncryption proves that c is an encryption of alpha under pk using
// randomness s, i.e. c = pk.EncryptWithRandomness(alpha, s).
func ProveEncryption(pk *paillier.PublicKey, c, alpha, s *big.Int) *EncryptionZKP {
	n2 := pk.NSquare()

	x := common.GetRandomPositiveInt(pk.N)
	u := common.GetRandomPositiveRelativelyPrimeInt(pk.N)

	gx := new(big.Int).Exp(pk.Gamma(), x, n2)
	un := new(big.Int).Exp(u, pk.N, n2)
	b := new(big.Int).Mod(new(big.Int).Mul(gx, un), n2)

	e := encryptionChallenge(c, b)

	xeAlpha := new(big.Int).Add(x, new(big.Int).Mul(e, alpha))
	t := new(big.Int).Div(xeAlpha, pk.N)
	w := new(big.Int).Mod(xeAlpha, pk.N)

	se := new(big.Int).Exp(s, e, n2)
	gt := new(big.Int).Exp(pk.Gamma(), t, n2)
	z := new(big.Int).Mod(new(big.Int).Mul(new(big.Int).Mul(u, se), gt), n2)

	return &EncryptionZKP{B: b, W: w, Z: z}
}

// Verify checks the proof against the public key pk and ciphertext c.
func (pf *EncryptionZKP) Verify(pk *paillier.PublicKey, c *big.Int) bool {
	if pf == nil || pf.B == nil || pf.W == nil || pf.Z == nil {
		return false
	}
	n2 := pk.NSquare()
	e := encryptionChallenge(c, pf.B)

	gw := new(big.Int).Exp(pk.Gamma(), pf.W, n2)
	zn := new(big.Int).Exp(pf.Z, pk.N, n2)
	lhs := new(big.Int).Mod(new(big.Int).Mul(gw, zn), n2)

	ce := new(big.Int).Exp(c, e, n2)
	rhs := new(big.Int).Mod(new(big.Int).Mul(pf.B, ce), n2)

	return lhs.Cmp(rhs) == 0
}
