package paillier

import (
	"math/big"

	"github.com/citp/ThresholdECDSA/common"
)

var (
	zero = big.NewInt(0)
	one  = big.NewInt(1)
	two  = big.NewInt(2)
	four = big.NewInt(4)
)

// L evaluates the standard Paillier decryption helper L(u) = (u-1)/N.
func L(u, n *big.Int) *big.Int {
	t := new(big.Int).Sub(u, one)
	return new(big.Int).Div(t, n)
}

// EncryptAndReturnRandomness encrypts m under pk, returning the randomness x
// used, so a caller can produce an EncryptionZKP over the same ciphertext.
func (pk *PublicKey) EncryptAndReturnRandomness(m *big.Int) (c, x *big.Int, err error) {
	if m.Sign() < 0 || m.Cmp(pk.N) >= 0 {
		return nil, nil, ErrMessageTooLong
	}
	x = common.GetRandomPositiveRelativelyPrimeInt(pk.N)
	n2 := pk.NSquare()
	gm := new(big.Int).Exp(pk.Gamma(), m, n2)
	xn := new(big.Int).Exp(x, pk.N, n2)
	c = common.ModInt(n2).Mul(gm, xn)
	return c, x, nil
}

// Encrypt computes E(m, r) = (1+N)^m * r^N mod N^2 for fresh randomness r.
func (pk *PublicKey) Encrypt(m *big.Int) (*big.Int, error) {
	c, _, err := pk.EncryptAndReturnRandomness(m)
	return c, err
}

// EncryptWithRandomness encrypts m using the caller-supplied randomness r,
// for tests and for protocol steps that must bind a ciphertext to a
// previously-committed r.
func (pk *PublicKey) EncryptWithRandomness(m, r *big.Int) (*big.Int, error) {
	if m.Sign() < 0 || m.Cmp(pk.N) >= 0 {
		return nil, ErrMessageTooLong
	}
	n2 := pk.NSquare()
	gm := new(big.Int).Exp(pk.Gamma(), m, n2)
	rn := new(big.Int).Exp(r, pk.N, n2)
	return common.ModInt(n2).Mul(gm, rn), nil
}

// Multiply returns E(m*m2 mod N) from c = E(m2) without decrypting, i.e.
// c^m mod N^2.
func (pk *PublicKey) Multiply(m, c *big.Int) (*big.Int, error) {
	if m.Sign() < 0 || m.Cmp(pk.N) >= 0 {
		return nil, ErrMessageTooLong
	}
	n2 := pk.NSquare()
	if c.Sign() < 0 || c.Cmp(n2) >= 0 {
		return nil, ErrCiphertextTooLong
	}
	return common.ModInt(n2).Exp(c, m), nil
}

// Add returns E(m1+m2 mod N) from E(m1), E(m2), i.e. c1*c2 mod N^2.
func (pk *PublicKey) Add(c1, c2 *big.Int) (*big.Int, error) {
	n2 := pk.NSquare()
	if c1.Sign() < 0 || c1.Cmp(n2) >= 0 {
		return nil, ErrCiphertextTooLong
	}
	if c2.Sign() < 0 || c2.Cmp(n2) >= 0 {
		return nil, ErrCiphertextTooLong
	}
	return common.ModInt(n2).Mul(c1, c2), nil
}

// Rerandomize returns a fresh encryption of the same plaintext as c, by
// multiplying in E(0, r) for a freshly sampled r.
func (pk *PublicKey) Rerandomize(c *big.Int) (*big.Int, error) {
	n2 := pk.NSquare()
	if c.Sign() < 0 || c.Cmp(n2) >= 0 {
		return nil, ErrCiphertextTooLong
	}
	r := common.GetRandomPositiveRelativelyPrimeInt(pk.N)
	rn := new(big.Int).Exp(r, pk.N, n2)
	return common.ModInt(n2).Mul(c, rn), nil
}

// Decrypt recovers the plaintext underlying c.
func (sk *PrivateKey) Decrypt(c *big.Int) (*big.Int, error) {
	n2 := sk.NSquare()
	if c.Sign() < 0 || c.Cmp(n2) >= 0 {
		return nil, ErrCiphertextTooLong
	}
	if gcd := new(big.Int).GCD(nil, nil, c, n2); gcd.Cmp(one) != 0 {
		return nil, ErrMessageMalformed
	}
	lc := L(new(big.Int).Exp(c, sk.LambdaN, n2), sk.N)
	lg := L(new(big.Int).Exp(sk.Gamma(), sk.LambdaN, n2), sk.N)
	inv := new(big.Int).ModInverse(lg, sk.N)
	return common.ModInt(sk.N).Mul(lc, inv), nil
}
