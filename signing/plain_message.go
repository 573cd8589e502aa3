package signing

import (
	"crypto/elliptic"
	"errors"
	"math/big"

	"github.com/citp/ThresholdECDSA/commitment"
	"github.com/citp/ThresholdECDSA/crypto"
	"github.com/citp/ThresholdECDSA/paillier"
	"github.com/citp/ThresholdECDSA/zkp"
)

// PlainRound1Message commits to this party's nonce share: R_i = k_i*G and
// v_i = Encrypt(k_i).
type PlainRound1Message struct {
	Commitment *commitment.Commitment
}

// PlainRound2Message opens the round-1 commitment and attaches the
// relation proof binding v_i to R_i.
type PlainRound2Message struct {
	Opening *commitment.Opening
	Proof   *zkp.RelationProof
}

// PlainRound3Message commits to this party's blinding share: u_i =
// Encrypt(rho_i) and w_i = Encrypt(c_i).
type PlainRound3Message struct {
	Commitment *commitment.Commitment
}

// PlainRound4Message opens the round-3 commitment, attaches the proofs of
// knowledge/range for u_i and w_i, and carries z_i, this party's individual
// contribution toward the aggregated product k*rho, formed from the nonce
// aggregate v that PlainRound3 combined from every party's round-2
// message.
type PlainRound4Message struct {
	Opening *commitment.Opening
	EncU    *zkp.EncryptionZKP
	RangeW  *zkp.RangeProof
	Z       *big.Int
}

// PlainRound5Message carries this party's partial decryption of the
// aggregated Z = Encrypt(k*rho + q*C).
type PlainRound5Message struct {
	Mu *paillier.PartialDecryption
}

// PlainRound6Message carries this party's term_i = Multiply(psi*rho_i,
// sumEnc): an encryption of this party's additive contribution toward
// sigma = psi*rho*(mPrime + r*x), using the now-public psi and this
// party's own never-revealed rho_i. Summing every party's term_i gives
// Encrypt(sigma) without ever forming a ciphertext-by-ciphertext product.
type PlainRound6Message struct {
	Term *big.Int
}

// PlainRound7Message carries this party's partial decryption of the
// aggregated sigma ciphertext.
type PlainRound7Message struct {
	Sigma *paillier.PartialDecryption
}

func packNonceSecrets(r *crypto.ECPoint, v *big.Int) []*big.Int {
	return []*big.Int{r.X(), r.Y(), v}
}

func unpackNonceSecrets(curve elliptic.Curve, secrets []*big.Int) (*crypto.ECPoint, *big.Int, error) {
	if len(secrets) != 3 {
		return nil, nil, errors.New("signing: malformed nonce opening secrets")
	}
	r, err := crypto.NewECPoint(curve, secrets[0], secrets[1])
	if err != nil {
		return nil, nil, err
	}
	return r, secrets[2], nil
}

func packBlindingSecrets(u, w *big.Int) []*big.Int {
	return []*big.Int{u, w}
}

func unpackBlindingSecrets(secrets []*big.Int) (u, w *big.Int, err error) {
	if len(secrets) != 2 {
		return nil, nil, errors.New("signing: malformed blinding opening secrets")
	}
	return secrets[0], secrets[1], nil
}
