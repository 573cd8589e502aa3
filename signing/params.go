// Package signing implements the four-round L2FHE-based and seven-round
// plain-Paillier threshold-ECDSA signing protocols over secp256k1. Neither
// variant ever reconstructs the shared private key: every party holds a
// threshold-Paillier decryption share, and the nonce and signature value
// are recovered only through threshold partial decryption and Lagrange
// combination (paillier.CombinePartialDecryptions / l2fhe.CombineL2).
//
// This package is a library, not a networked service: each round is a
// plain method that consumes the previous round's peer messages and
// returns this party's next message. Message transport, retries and
// timeouts are the caller's responsibility: each round is produced and
// consumed directly by the caller rather than driven through a chan-based
// Party/Update loop, since there is no wire protocol to drive here.
package signing

import (
	"crypto/elliptic"
	"math/big"

	"github.com/citp/ThresholdECDSA/commitment"
	"github.com/citp/ThresholdECDSA/crypto"
	"github.com/citp/ThresholdECDSA/l2fhe"
	"github.com/citp/ThresholdECDSA/paillier"
	"github.com/citp/ThresholdECDSA/zkp"
)

// SharedParams bundles the protocol inputs common to every signing party,
// fixed once for the lifetime of a shared ECDSA key: the threshold
// Paillier public key, the auxiliary ZKP parameters, the commitment
// master key, the curve, the L1 encryption of the shared DSA private key,
// and the aggregated DSA public key point.
type SharedParams struct {
	PublicKey       *paillier.ThresholdPublicKey
	Aux             *zkp.AuxiliaryParameters
	MasterKey       *commitment.MasterPublicKey
	Curve           elliptic.Curve
	Q               *big.Int // curve subgroup order
	CBound          *big.Int // bound for the c_i blinding term, q^6 per spec
	EncryptedDSAKey      *l2fhe.L1Ciphertext
	EncryptedDSAKeyPlain *big.Int // the same key, encrypted as a plain Paillier ciphertext for PlainSigner
	DSAPublicKey         *crypto.ECPoint

	encOne       *big.Int // canonical Paillier encryption of the plaintext 1
	encOneRandom *big.Int // the (public) randomness used to produce encOne
}

// NewSharedParams derives the canonical Enc(1) and its bound constants
// from the given public key and curve, producing the params object every
// party's Signer/PlainSigner is constructed from.
func NewSharedParams(
	pub *paillier.ThresholdPublicKey,
	aux *zkp.AuxiliaryParameters,
	masterKey *commitment.MasterPublicKey,
	curve elliptic.Curve,
	encryptedDSAKey *l2fhe.L1Ciphertext,
	encryptedDSAKeyPlain *big.Int,
	dsaPublicKey *crypto.ECPoint,
) (*SharedParams, error) {
	q := curve.Params().N
	encOne, r, err := pub.EncryptAndReturnRandomness(big.NewInt(1))
	if err != nil {
		return nil, err
	}
	cBound := new(big.Int).Exp(q, big.NewInt(6), nil)
	return &SharedParams{
		PublicKey:            pub,
		Aux:                  aux,
		MasterKey:            masterKey,
		Curve:                curve,
		Q:                    q,
		CBound:               cBound,
		EncryptedDSAKey:      encryptedDSAKey,
		EncryptedDSAKeyPlain: encryptedDSAKeyPlain,
		DSAPublicKey:         dsaPublicKey,
		encOne:               encOne,
		encOneRandom:         r,
	}, nil
}

// paillierPublicKey is a convenience accessor to the plain (non-threshold)
// view of the shared public key, since most of the `paillier`/`zkp`/`l2fhe`
// APIs take a *paillier.PublicKey.
func (p *SharedParams) paillierPublicKey() *paillier.PublicKey {
	return &p.PublicKey.PublicKey
}

// truncateDigest interprets msg as a big-endian nonnegative integer and,
// if its bit length exceeds bitlen(q), shifts right by the excess. This is
// the `mPrime` derivation used by both signer variants.
func truncateDigest(q *big.Int, msg []byte) *big.Int {
	m := new(big.Int).SetBytes(msg)
	excess := m.BitLen() - q.BitLen()
	if excess > 0 {
		m.Rsh(m, uint(excess))
	}
	return m
}
