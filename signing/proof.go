package signing

import (
	"errors"
	"math/big"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/citp/ThresholdECDSA/common"
	"github.com/citp/ThresholdECDSA/crypto"
	"github.com/citp/ThresholdECDSA/l2fhe"
	"github.com/citp/ThresholdECDSA/paillier"
	"github.com/citp/ThresholdECDSA/zkp"
)

// OpeningProof is the composite range-relation ZKP of round 2, binding
// the opened (R_i, u_i, v_i, w_i) tuple to the secrets committed in round
// 1: knowledge of u_i's blinding, a range bound on w_i's plaintext, and a
// proof that v_i's plaintext is the discrete log of R_i.
//
// v_i and w_i use the degenerate L1 split A=0 (the full value lives in
// Beta) rather than a random split: both need to be bound, in zero
// knowledge, to a public quantity (R_i for v_i, the range bound for w_i),
// and the random-split trick that hides u_i's plaintext behind an
// uninformative public "a" buys nothing once Beta itself is already
// subject to a direct ZK statement about its plaintext.
type OpeningProof struct {
	EncU      *zkp.EncryptionZKP
	RangeW    *zkp.RangeProof
	RelationV *zkp.RelationProof
}

// proveOpening produces the composite proof for a party that sampled rho
// (blinded as u = Encrypt1(rho, bU, rU)), k (v.Beta = Encrypt(k, rK), with
// R = k*G), and c (w.Beta = Encrypt(c, rW)).
func proveOpening(
	params *SharedParams,
	bU, rU *big.Int,
	k, rK *big.Int,
	c, rW *big.Int,
	u, v, w *l2fhe.L1Ciphertext,
	r *crypto.ECPoint,
) *OpeningProof {
	pk := params.paillierPublicKey()

	encU := zkp.ProveEncryption(pk, u.Beta, bU, rU)
	rangeW := zkp.ProveRange(pk, params.Aux, w.Beta, c, rW, params.CBound)

	relR := deriveRelationRandomness(pk, params.encOneRandom, k, rK)
	relationV := zkp.ProveRelation(pk, params.Aux, params.encOne, v.Beta, k, big.NewInt(0), relR, params.Q, r)

	return &OpeningProof{EncU: encU, RangeW: rangeW, RelationV: relationV}
}

// deriveRelationRandomness computes r such that
// encOne^x * g^0 * r^N == Encrypt(x, rX) mod n^2, given
// encOne = Encrypt(1, s1): r = rX * (s1^x)^-1 mod n, so that
// ProveRelation's witness matches the ciphertext actually broadcast as
// v.Beta instead of requiring v.Beta be constructed in any special way.
func deriveRelationRandomness(pk *paillier.PublicKey, s1, x, rX *big.Int) *big.Int {
	s1x := new(big.Int).Exp(s1, x, pk.N)
	s1xInv := new(big.Int).ModInverse(s1x, pk.N)
	return new(big.Int).Mod(new(big.Int).Mul(rX, s1xInv), pk.N)
}

// verifyOpening checks all three sub-proofs of pf against the opened
// (r, u, v, w) tuple. All three run concurrently and always run to
// completion regardless of an earlier failure; their failures are
// collected with go-multierror so a caller can report exactly which
// sub-proof(s) failed instead of a bare true/false.
func verifyOpening(params *SharedParams, pf *OpeningProof, r *crypto.ECPoint, u, v, w *l2fhe.L1Ciphertext) error {
	if pf == nil || pf.EncU == nil || pf.RangeW == nil || pf.RelationV == nil {
		return errors.New("signing: opening proof missing one or more components")
	}
	pk := params.paillierPublicKey()

	errs := make([]error, 3)
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		if !pf.EncU.Verify(pk, u.Beta) {
			errs[0] = errors.New("signing: u encryption proof failed")
		}
	}()
	go func() {
		defer wg.Done()
		if !pf.RangeW.Verify(pk, params.Aux, w.Beta, params.CBound) {
			errs[1] = errors.New("signing: w range proof failed")
		}
	}()
	go func() {
		defer wg.Done()
		if !pf.RelationV.Verify(pk, params.Aux, params.encOne, v.Beta, params.Q, r) {
			errs[2] = errors.New("signing: v relation proof failed")
		}
	}()
	wg.Wait()

	var result *multierror.Error
	for _, e := range errs {
		if e != nil {
			result = multierror.Append(result, e)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		common.Logger.Debugf("signing: opening proof sub-check failure: %v", err)
		return err
	}
	return nil
}
