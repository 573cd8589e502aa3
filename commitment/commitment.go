// Package commitment implements the multi-trapdoor pairing commitment the
// signing protocol uses to bind each party to its round-1 values before
// they are opened, plus a plain Pedersen commitment as a lighter-weight
// drop-in where non-malleability under the bilinear assumption isn't
// needed.
//
// Grounded on the pairing usage idiom of fentec-project/gofe's
// abe/fame.go (ScalarBaseMult/ScalarMult/Add/Pair over
// github.com/fentec-project/bn256), and on
// crypto/commitments/hash_commitment.go for the commit/decommit struct
// shape this package follows instead of a protobuf message.
package commitment

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/fentec-project/bn256"

	"github.com/citp/ThresholdECDSA/common"
)

// MasterPublicKey is the trusted-setup public output: matched generators
// of G1 and G2 so that g, h can appear as either a pairing's first or
// second argument as the commitment equation requires. The scalar relating
// Hg2/Hg1 to Gg2/Gg1 is discarded once this key is produced; no one,
// including whoever ran setup, retains it afterward.
type MasterPublicKey struct {
	Gg1 *bn256.G1
	Hg1 *bn256.G1
	Gg2 *bn256.G2
	Hg2 *bn256.G2
}

// GenerateMasterPublicKey runs the trusted setup: sample a secret scalar x,
// publish (g, x*g) in both G1 and G2, and discard x.
func GenerateMasterPublicKey(randSource io.Reader) (*MasterPublicKey, error) {
	if randSource == nil {
		randSource = rand.Reader
	}
	x, err := rand.Int(randSource, bn256.Order)
	if err != nil {
		return nil, err
	}
	gg1 := new(bn256.G1).ScalarBaseMult(big.NewInt(1))
	gg2 := new(bn256.G2).ScalarBaseMult(big.NewInt(1))
	hg1 := new(bn256.G1).ScalarMult(gg1, x)
	hg2 := new(bn256.G2).ScalarMult(gg2, x)
	return &MasterPublicKey{Gg1: gg1, Hg1: hg1, Gg2: gg2, Hg2: hg2}, nil
}

// Commitment is the public half of a multi-trapdoor commitment: e is the
// freshly sampled per-commitment trapdoor and a is the bound value.
type Commitment struct {
	E *big.Int
	A *bn256.G2
}

// Opening is the private half, revealed once the committer is ready to
// decommit.
type Opening struct {
	R       *big.Int
	Secrets []*big.Int
}

// Commit binds secrets under mpk. d = H(secrets) mod q, e, r are fresh
// randomness, and a = g^d * (h*g^e)^r computed in G2 so it can serve
// directly as a pairing argument during verification.
func Commit(mpk *MasterPublicKey, secrets ...*big.Int) (*Commitment, *Opening, error) {
	e, err := rand.Int(rand.Reader, bn256.Order)
	if err != nil {
		return nil, nil, err
	}
	r, err := rand.Int(rand.Reader, bn256.Order)
	if err != nil {
		return nil, nil, err
	}
	d := digest(secrets)

	hge := new(bn256.G2).Add(mpk.Hg2, new(bn256.G2).ScalarMult(mpk.Gg2, e))
	a := new(bn256.G2).Add(
		new(bn256.G2).ScalarMult(mpk.Gg2, d),
		new(bn256.G2).ScalarMult(hge, r),
	)
	return &Commitment{E: e, A: a}, &Opening{R: r, Secrets: secrets}, nil
}

// Verify checks that opening is a valid decommitment of cmt under mpk.
func Verify(mpk *MasterPublicKey, cmt *Commitment, open *Opening) bool {
	if cmt == nil || open == nil || cmt.A == nil || cmt.E == nil || open.R == nil {
		return false
	}
	d := digest(open.Secrets)

	lhsG1 := new(bn256.G1).ScalarMult(mpk.Gg1, open.R)
	lhsG2 := new(bn256.G2).Add(mpk.Hg2, new(bn256.G2).ScalarMult(mpk.Gg2, cmt.E))
	lhs := bn256.Pair(lhsG1, lhsG2)

	aMinusD := new(bn256.G2).Add(cmt.A, new(bn256.G2).Neg(new(bn256.G2).ScalarMult(mpk.Gg2, d)))
	rhs := bn256.Pair(mpk.Gg1, aMinusD)

	return lhs.String() == rhs.String()
}

// digest hashes secrets into Z_q via the shared Fiat-Shamir transcript
// hash, keeping this package consistent with the rest of the module's
// proofs instead of introducing a second hash primitive.
func digest(secrets []*big.Int) *big.Int {
	h := common.SHA256i(secrets...)
	return new(big.Int).Mod(h, bn256.Order)
}
