// Package l2fhe implements the two-level somewhat-homomorphic layer built
// on top of Paillier: L1 ciphertexts support addition and scalar
// multiplication, and multiplying two L1 ciphertexts together produces an
// L2 ciphertext that still supports addition and scalar multiplication (but
// not a further multiplication). This is the encryption scheme the
// threshold-ECDSA signer uses to keep every intermediate value encrypted
// end to end, including the one multiplication the signing equations need.
//
// There is no teacher precedent for this layer; it is grounded directly in
// the algebraic definitions and built from this module's own paillier
// package.
package l2fhe

import (
	"math/big"

	"github.com/citp/ThresholdECDSA/paillier"
)

// fixedRandomness is used in two places: in Mult, to encrypt the product
// a1*a2 of the two ciphertexts' clear A parts, and in AddMixed, for the L1
// encryption of the public constant 1 (the multiplicative identity). Both
// plaintexts are public values, so a fixed encryption randomness leaks
// nothing; it must never be reused to encrypt a secret value.
var fixedRandomness = big.NewInt(1)

// L1Ciphertext is a single-level somewhat-homomorphic encryption of m:
// a = (m - b) mod n in the clear, with b itself Paillier-encrypted as Beta.
// Splitting the plaintext this way is what lets Mult below produce a
// result still decryptable without a second round of interaction.
type L1Ciphertext struct {
	A    *big.Int
	Beta *big.Int
}

// L1Pair is one cross term (Beta1, Beta2) accumulated inside an L2
// ciphertext by a multiplication; the plaintext's "hidden" component is the
// sum over all pairs of Decrypt(Beta1)*Decrypt(Beta2).
type L1Pair struct {
	Beta1, Beta2 *big.Int
}

// L2Ciphertext is the result of multiplying two L1 ciphertexts (or adding
// such results together): Alpha is a Paillier encryption of
// a1*a2 + a1*b2 + a2*b1 (the product of the clear A parts plus the two
// mixed terms), and B carries the Beta pairs whose plaintexts b1*b2 must be
// multiplied back together at decryption time.
type L2Ciphertext struct {
	Alpha *big.Int
	B     []L1Pair
}

// Encrypt1 produces an L1 encryption of m using Paillier randomness r to
// encrypt the hidden share b: a = (m - b) mod n, Beta = Encrypt(b; r).
func Encrypt1(pk *paillier.PublicKey, m, b, r *big.Int) (*L1Ciphertext, error) {
	beta, err := pk.EncryptWithRandomness(b, r)
	if err != nil {
		return nil, err
	}
	a := new(big.Int).Mod(new(big.Int).Sub(m, b), pk.N)
	return &L1Ciphertext{A: a, Beta: beta}, nil
}

// AddL1 returns an encryption of m1+m2 mod n given encryptions of m1, m2.
func AddL1(pk *paillier.PublicKey, c1, c2 *L1Ciphertext) (*L1Ciphertext, error) {
	beta, err := pk.Add(c1.Beta, c2.Beta)
	if err != nil {
		return nil, err
	}
	a := new(big.Int).Mod(new(big.Int).Add(c1.A, c2.A), pk.N)
	return &L1Ciphertext{A: a, Beta: beta}, nil
}

// CMultL1 returns an encryption of m*k mod n given an encryption of m and a
// cleartext scalar k.
func CMultL1(pk *paillier.PublicKey, c *L1Ciphertext, k *big.Int) (*L1Ciphertext, error) {
	beta, err := pk.Multiply(k, c.Beta)
	if err != nil {
		return nil, err
	}
	a := new(big.Int).Mod(new(big.Int).Mul(c.A, k), pk.N)
	return &L1Ciphertext{A: a, Beta: beta}, nil
}

// Mult multiplies two L1 ciphertexts, producing an L2 ciphertext encrypting
// m1*m2 mod n. alpha = Encrypt(a1*a2 mod n; fixedRandomness) +
// Multiply(beta2, a1) + Multiply(beta1, a2), all combined in Z_{n^2}; B
// records the single cross term (beta1, beta2) whose product contributes
// b1*b2 at decryption time.
func Mult(pk *paillier.PublicKey, c1, c2 *L1Ciphertext) (*L2Ciphertext, error) {
	a1a2 := new(big.Int).Mod(new(big.Int).Mul(c1.A, c2.A), pk.N)
	encA1A2, err := pk.EncryptWithRandomness(a1a2, fixedRandomness)
	if err != nil {
		return nil, err
	}
	beta2A1, err := pk.Multiply(c1.A, c2.Beta)
	if err != nil {
		return nil, err
	}
	beta1A2, err := pk.Multiply(c2.A, c1.Beta)
	if err != nil {
		return nil, err
	}
	alpha, err := pk.Add(encA1A2, beta2A1)
	if err != nil {
		return nil, err
	}
	alpha, err = pk.Add(alpha, beta1A2)
	if err != nil {
		return nil, err
	}
	return &L2Ciphertext{Alpha: alpha, B: []L1Pair{{Beta1: c1.Beta, Beta2: c2.Beta}}}, nil
}

// AddL2 returns an encryption of m1+m2 given L2 encryptions of m1, m2: the
// alphas combine homomorphically and the cross-term lists concatenate.
func AddL2(pk *paillier.PublicKey, c1, c2 *L2Ciphertext) (*L2Ciphertext, error) {
	alpha, err := pk.Add(c1.Alpha, c2.Alpha)
	if err != nil {
		return nil, err
	}
	b := make([]L1Pair, 0, len(c1.B)+len(c2.B))
	b = append(b, c1.B...)
	b = append(b, c2.B...)
	return &L2Ciphertext{Alpha: alpha, B: b}, nil
}

// AddMixed returns an L2 encryption of m1+m2 given an L1 encryption of m1
// and an L2 encryption of m2, by lifting c1 to L2 via a multiplication by
// the L1 encryption of the public constant 1.
func AddMixed(pk *paillier.PublicKey, c1 *L1Ciphertext, c2 *L2Ciphertext) (*L2Ciphertext, error) {
	one, err := Encrypt1(pk, big.NewInt(1), big.NewInt(0), fixedRandomness)
	if err != nil {
		return nil, err
	}
	lifted, err := Mult(pk, c1, one)
	if err != nil {
		return nil, err
	}
	return AddL2(pk, lifted, c2)
}

// CMultL2 returns an encryption of m*k given an L2 encryption of m and a
// cleartext scalar k: alpha scales directly, and within each cross-term
// pair only the first element needs to scale (scaling either side of a
// product scales the product).
func CMultL2(pk *paillier.PublicKey, c *L2Ciphertext, k *big.Int) (*L2Ciphertext, error) {
	alpha, err := pk.Multiply(k, c.Alpha)
	if err != nil {
		return nil, err
	}
	b := make([]L1Pair, len(c.B))
	for i, pair := range c.B {
		beta1, err := pk.Multiply(k, pair.Beta1)
		if err != nil {
			return nil, err
		}
		b[i] = L1Pair{Beta1: beta1, Beta2: pair.Beta2}
	}
	return &L2Ciphertext{Alpha: alpha, B: b}, nil
}

// DecryptL1 recovers the plaintext underlying an L1 ciphertext: a +
// Decrypt(beta) mod n.
func DecryptL1(sk *paillier.PrivateKey, c *L1Ciphertext) (*big.Int, error) {
	b, err := sk.Decrypt(c.Beta)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Mod(new(big.Int).Add(c.A, b), sk.N), nil
}

// DecryptL2 recovers the plaintext underlying an L2 ciphertext:
// Decrypt(alpha) + sum Decrypt(beta1)*Decrypt(beta2) mod n.
func DecryptL2(sk *paillier.PrivateKey, c *L2Ciphertext) (*big.Int, error) {
	sum, err := sk.Decrypt(c.Alpha)
	if err != nil {
		return nil, err
	}
	for _, pair := range c.B {
		b1, err := sk.Decrypt(pair.Beta1)
		if err != nil {
			return nil, err
		}
		b2, err := sk.Decrypt(pair.Beta2)
		if err != nil {
			return nil, err
		}
		sum.Add(sum, new(big.Int).Mul(b1, b2))
	}
	return sum.Mod(sum, sk.N), nil
}
