package zkp

import (
	"crypto/sha256"
	"math/big"

	"github.com/citp/ThresholdECDSA/common"
	"github.com/citp/ThresholdECDSA/paillier"
)

// MultiplicationZKP proves that d is c raised to plaintext power alpha and
// rerandomized by r, i.e. d = c^alpha * r^n mod n^2, without revealing
// alpha or r. This is the proof a party attaches when it scales an existing
// ciphertext E(a) by a secret multiplier alpha it knows, so its peers can
// check the output really does encrypt a*alpha rather than an unrelated
// value.
//
// Structurally identical to EncryptionZKP with c standing in for the
// generator (n+1): both are knowledge-of-exponent sigma protocols over the
// same Z_{n^2} commitment scheme, following
// crypto/mta/range_proof.go's commit/challenge/response shape.
type MultiplicationZKP struct {
	B *big.Int // commitment c^x * u^n mod n^2
	W *big.Int // response x + e*alpha mod n
	Z *big.Int // response u * r^e * c^t mod n^2, t = floor((x+e*alpha)/n)
}

func multiplicationChallenge(c, d, b *big.Int) *big.Int {
	h := sha256.New()
	h.Write(c.Bytes())
	h.Write(d.Bytes())
	h.Write(b.Bytes())
	return new(big.Int).SetBytes(h.Sum(nil))
}

// ProveMultiplication proves that d = pk.Multiply(alpha, c) rerandomized by
// r, i.e. d = c^alpha * r^n mod n^2.
func ProveMultiplication(pk *paillier.PublicKey, c, d, alpha, r *big.Int) *MultiplicationZKP {
	n2 := pk.NSquare()

	x := common.GetRandomPositiveInt(pk.N)
	u := common.GetRandomPositiveRelativelyPrimeInt(pk.N)

	cx := new(big.Int).Exp(c, x, n2)
	un := new(big.Int).Exp(u, pk.N, n2)
	b := new(big.Int).Mod(new(big.Int).Mul(cx, un), n2)

	e := multiplicationChallenge(c, d, b)

	xeAlpha := new(big.Int).Add(x, new(big.Int).Mul(e, alpha))
	t := new(big.Int).Div(xeAlpha, pk.N)
	w := new(big.Int).Mod(xeAlpha, pk.N)

	re := new(big.Int).Exp(r, e, n2)
	ct := new(big.Int).Exp(c, t, n2)
	z := new(big.Int).Mod(new(big.Int).Mul(new(big.Int).Mul(u, re), ct), n2)

	return &MultiplicationZKP{B: b, W: w, Z: z}
}

// Verify checks the proof against the public key pk and the ciphertext pair
// (c, d).
func (pf *MultiplicationZKP) Verify(pk *paillier.PublicKey, c, d *big.Int) bool {
	if pf == nil || pf.B == nil || pf.W == nil || pf.Z == nil {
		return false
	}
	n2 := pk.NSquare()
	e := multiplicationChallenge(c, d, pf.B)

	cw := new(big.Int).Exp(c, pf.W, n2)
	zn := new(big.Int).Exp(pf.Z, pk.N, n2)
	lhs := new(big.Int).Mod(new(big.Int).Mul(cw, zn), n2)

	de := new(big.Int).Exp(d, e, n2)
	rhs := new(big.Int).Mod(new(big.Int).Mul(pf.B, de), n2)

	return lhs.Cmp(rhs) == 0
}
