package zkp

import (
	"context"
	"math/big"

	"github.com/citp/ThresholdECDSA/common"
)

// AuxiliaryParameters is a second, independent RSA modulus together with
// two generators h1, h2 of its group of squares, used as the Pedersen-style
// commitment base for the range and relation proofs of RangeProof and
// RelationProof. Each signer generates its own and publishes it alongside
// its threshold Paillier share.
//
// Ported from crypto/safeparameter/parameter_gen.go, dropping
// the Paillier-key generation that file bundles alongside it (this package
// already has paillier.GenerateKeyPair for that).
type AuxiliaryParameters struct {
	NTilde, H1, H2 *big.Int
}

// auxiliaryParamsSecret is the trapdoor (x with h2 = h1^x mod NTilde) used
// only to produce the AuxiliaryParameterProof; it is discarded after key
// setup and never transmitted.
type auxiliaryParamsSecret struct {
	AuxiliaryParameters
	x, p, q *big.Int
}

// GenerateAuxiliaryParameters samples two safe primes and derives NTilde,
// h1, h2, returning the public parameters plus the proof that h1, h2
// generate the same subgroup of Z_NTilde*.
func GenerateAuxiliaryParameters(ctx context.Context, bitLen int, optionalConcurrency ...int) (*AuxiliaryParameters, *AuxiliaryParameterProof, error) {
	concurrency := 4
	if len(optionalConcurrency) > 0 {
		concurrency = optionalConcurrency[0]
	}
	sgps, err := common.GetRandomSafePrimesConcurrent(ctx, bitLen/2, 2, concurrency)
	if err != nil {
		return nil, nil, err
	}
	p, q := sgps[0].SafePrime(), sgps[1].SafePrime()
	nTilde := new(big.Int).Mul(p, q)
	modNTilde := common.ModInt(nTilde)

	f1 := common.GetRandomPositiveRelativelyPrimeInt(nTilde)
	alpha := common.GetRandomPositiveRelativelyPrimeInt(nTilde)
	h1 := modNTilde.Mul(f1, f1)
	h2 := modNTilde.Exp(h1, alpha)

	secret := &auxiliaryParamsSecret{
		AuxiliaryParameters: AuxiliaryParameters{NTilde: nTilde, H1: h1, H2: h2},
		x:                   alpha,
		p:                   sgps[0].Prime(),
		q:                   sgps[1].Prime(),
	}
	proof := proveAuxiliaryParameters(secret)
	return &secret.AuxiliaryParameters, proof, nil
}
