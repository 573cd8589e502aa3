package signing

import (
	"crypto/elliptic"
	"errors"
	"math/big"

	"github.com/citp/ThresholdECDSA/commitment"
	"github.com/citp/ThresholdECDSA/crypto"
	"github.com/citp/ThresholdECDSA/l2fhe"
)

// Round1Message is the only message of round 1: a commitment to this
// party's (R_i, u_i, v_i, w_i) tuple.
type Round1Message struct {
	Commitment *commitment.Commitment
}

// Round2Message opens the round-1 commitment and attaches the composite
// range-relation proof binding the opened values together.
type Round2Message struct {
	Opening *commitment.Opening
	Proof   *OpeningProof
}

// Round3Message carries this party's partial decryption of the L2
// ciphertext z = (w*q) + (u*v).
type Round3Message struct {
	Eta *l2fhe.L2PartialDecryption
}

// Round4Message carries this party's partial decryption of the final L2
// ciphertext sigma.
type Round4Message struct {
	Sigma *l2fhe.L2PartialDecryption
}

// Signature is a completed ECDSA signature, canonicalized to low-S form.
type Signature struct {
	R *big.Int
	S *big.Int
}

// packOpeningSecrets flattens (R, u, v, w) into the ordered secrets slice
// the commitment layer hashes and the opening reveals.
func packOpeningSecrets(r *crypto.ECPoint, u, v, w *l2fhe.L1Ciphertext) []*big.Int {
	return []*big.Int{
		r.X(), r.Y(),
		u.A, u.Beta,
		v.A, v.Beta,
		w.A, w.Beta,
	}
}

// unpackOpeningSecrets is the inverse of packOpeningSecrets.
func unpackOpeningSecrets(curve elliptic.Curve, secrets []*big.Int) (*crypto.ECPoint, *l2fhe.L1Ciphertext, *l2fhe.L1Ciphertext, *l2fhe.L1Ciphertext, error) {
	if len(secrets) != 8 {
		return nil, nil, nil, nil, errors.New("signing: malformed opening secrets")
	}
	r, err := crypto.NewECPoint(curve, secrets[0], secrets[1])
	if err != nil {
		return nil, nil, nil, nil, err
	}
	u := &l2fhe.L1Ciphertext{A: secrets[2], Beta: secrets[3]}
	v := &l2fhe.L1Ciphertext{A: secrets[4], Beta: secrets[5]}
	w := &l2fhe.L1Ciphertext{A: secrets[6], Beta: secrets[7]}
	return r, u, v, w, nil
}
