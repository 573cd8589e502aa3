package commitment

import (
	"crypto/rand"
	"math/big"

	"github.com/citp/ThresholdECDSA/common"
	"github.com/citp/ThresholdECDSA/crypto"
)

// PedersenParams is a classical Pedersen commitment scheme over the
// order-q subgroup of Z_p*: a drop-in for Commit/Verify above when
// non-malleability under the bilinear assumption isn't required, at a
// fraction of the cost of a pairing.
type PedersenParams struct {
	P, Q, G, H *big.Int
}

// NewPedersenParams builds params from a safe prime p = 2q+1 and a
// generator g of the order-q subgroup, with h = g^x for a secret x that is
// discarded once h is computed (the same toxic-waste discipline as
// MasterPublicKey, in the classical Z_p* setting rather than a pairing
// group).
func NewPedersenParams(p, g *big.Int) (*PedersenParams, error) {
	q := new(big.Int).Rsh(new(big.Int).Sub(p, one), 1)
	x, err := rand.Int(rand.Reader, q)
	if err != nil {
		return nil, err
	}
	h := new(big.Int).Exp(g, x, p)
	return &PedersenParams{P: p, Q: q, G: g, H: h}, nil
}

// Commit computes c = g^m * h^r mod p for fresh randomness r.
func (pp *PedersenParams) Commit(m *big.Int) (c, r *big.Int, err error) {
	r, err = rand.Int(rand.Reader, pp.Q)
	if err != nil {
		return nil, nil, err
	}
	modP := common.ModInt(pp.P)
	c = modP.Mul(modP.Exp(pp.G, m), modP.Exp(pp.H, r))
	return c, r, nil
}

// VerifyCommit checks that c = g^m * h^r mod p.
func (pp *PedersenParams) VerifyCommit(c, m, r *big.Int) bool {
	modP := common.ModInt(pp.P)
	expected := modP.Mul(modP.Exp(pp.G, m), modP.Exp(pp.H, r))
	return c.Cmp(expected) == 0
}

var one = big.NewInt(1)

// ECPointCommitment is a Pedersen commitment to a curve point, committing
// separately to its X and Y coordinates so the point never has to be
// mapped into a scalar first.
type ECPointCommitment struct {
	CX, CY *big.Int
}

// ECPointOpening carries the randomness needed to verify an
// ECPointCommitment, alongside the point itself.
type ECPointOpening struct {
	Point  *crypto.ECPoint
	RX, RY *big.Int
}

// CommitECPoint flattens p's affine coordinates into the pair (X, Y) and
// Pedersen-commits to each independently.
func (pp *PedersenParams) CommitECPoint(p *crypto.ECPoint) (*ECPointCommitment, *ECPointOpening, error) {
	cx, rx, err := pp.Commit(p.X())
	if err != nil {
		return nil, nil, err
	}
	cy, ry, err := pp.Commit(p.Y())
	if err != nil {
		return nil, nil, err
	}
	return &ECPointCommitment{CX: cx, CY: cy}, &ECPointOpening{Point: p, RX: rx, RY: ry}, nil
}

// VerifyECPoint checks both coordinate commitments in o against c.
func (pp *PedersenParams) VerifyECPoint(c *ECPointCommitment, o *ECPointOpening) bool {
	if c == nil || o == nil || o.Point == nil {
		return false
	}
	return pp.VerifyCommit(c.CX, o.Point.X(), o.RX) && pp.VerifyCommit(c.CY, o.Point.Y(), o.RY)
}
