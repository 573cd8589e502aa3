package signing

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/citp/ThresholdECDSA/commitment"
	"github.com/citp/ThresholdECDSA/common"
	"github.com/citp/ThresholdECDSA/crypto"
	"github.com/citp/ThresholdECDSA/paillier"
	"github.com/citp/ThresholdECDSA/zkp"
)

// PlainSigner drives one party's side of the seven-round plain-Paillier
// threshold-ECDSA protocol: the same shape as Signer, but built entirely
// on paillier.PublicKey's additive homomorphism and scalar multiplication
// instead of l2fhe, since plain Paillier has no ciphertext-by-ciphertext
// product. The nonce and blinding samplings each get their own commit/open
// pair (rounds 1-2 and 3-4); the protocol's two multiplications (rho_i
// against the nonce aggregate, then psi*rho_i against the message/key
// aggregate) are each formed locally by every party and combined by
// addition, giving two rounds of threshold partial decryption (rounds 5
// and 7) bracketing the round-6 term exchange in between. A literal
// six-round schedule (without the round-6 term exchange) can only
// recover s = (rho*k)^-1*(mPrime + r*x): correct only when rho = 1, since
// nothing ever multiplies rho back out of the decrypted value. This extra
// round is what lets every party fold its own rho_i back in homomorphically
// (via the scalar multiply of round 6) before the final decryption,
// instead of ever exposing rho or k in the clear.
type PlainSigner struct {
	params *SharedParams
	share  *paillier.ThresholdPrivateShare
	selfID int
	peers  []int
	mPrime *big.Int

	round int

	// nonce share
	k, rK   *big.Int
	r       *crypto.ECPoint
	v       *big.Int
	opening1 *commitment.Opening

	// blinding share
	rho, rU *big.Int
	c, rW   *big.Int
	u, w    *big.Int
	opening2 *commitment.Opening

	commitments1 map[int]*commitment.Commitment
	commitments2 map[int]*commitment.Commitment

	aggR   *crypto.ECPoint
	aggV   *big.Int
	finalR *big.Int

	// round 6 state
	sumEnc *big.Int

	aborted bool
	reason  error
}

// NewPlainSigner constructs a PlainSigner analogous to NewSigner.
func NewPlainSigner(params *SharedParams, share *paillier.ThresholdPrivateShare, selfID int, participants []int, message []byte) (*PlainSigner, error) {
	peers := append([]int(nil), participants...)
	sort.Ints(peers)
	found := false
	for _, id := range peers {
		if id == selfID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("signing: selfID %d not present in participants", selfID)
	}
	return &PlainSigner{
		params: params,
		share:  share,
		selfID: selfID,
		peers:  peers,
		mPrime: truncateDigest(params.Q, message),
	}, nil
}

func (s *PlainSigner) abort(reason error) {
	if !s.aborted {
		s.aborted = true
		s.reason = reason
	}
}

func (s *PlainSigner) pk() *paillier.PublicKey {
	return s.params.paillierPublicKey()
}

// PlainRound1 samples this party's nonce k_i, computes R_i = k_i*G and v_i
// = Encrypt(k_i), and commits to the pair.
func (s *PlainSigner) PlainRound1() (*PlainRound1Message, error) {
	if s.round != 0 {
		return nil, ErrUnexpectedRound
	}
	s.round = 1
	common.Logger.Debugf("plain signing: party %d: round 1 starting", s.selfID)
	pk := s.pk()

	s.k = common.GetRandomPositiveInt(s.params.Q)
	s.r = crypto.ScalarBaseMult(s.params.Curve, s.k)
	s.rK = common.GetRandomPositiveRelativelyPrimeInt(pk.N)
	v, err := pk.EncryptWithRandomness(s.k, s.rK)
	if err != nil {
		return nil, err
	}
	s.v = v

	cmt, opening, err := commitment.Commit(s.params.MasterKey, packNonceSecrets(s.r, s.v)...)
	if err != nil {
		return nil, err
	}
	s.opening1 = opening

	common.Logger.Debugf("plain signing: party %d: round 1 finished", s.selfID)
	return &PlainRound1Message{Commitment: cmt}, nil
}

// PlainRound2 records every peer's round-1 commitment and returns this
// party's opening plus the relation proof binding v_i to R_i.
func (s *PlainSigner) PlainRound2(round1 map[int]*PlainRound1Message) (*PlainRound2Message, error) {
	if s.round != 1 {
		return nil, ErrUnexpectedRound
	}
	s.round = 2
	common.Logger.Debugf("plain signing: party %d: round 2 starting", s.selfID)
	if err := requirePeers(s.peers, round1); err != nil {
		return nil, err
	}
	s.commitments1 = make(map[int]*commitment.Commitment, len(s.peers))
	for id, msg := range round1 {
		s.commitments1[id] = msg.Commitment
	}

	pk := s.pk()
	relR := deriveRelationRandomness(pk, s.params.encOneRandom, s.k, s.rK)
	proof := zkp.ProveRelation(pk, s.params.Aux, s.params.encOne, s.v, s.k, big.NewInt(0), relR, s.params.Q, s.r)

	common.Logger.Debugf("plain signing: party %d: round 2 finished", s.selfID)
	return &PlainRound2Message{Opening: s.opening1, Proof: proof}, nil
}

// PlainRound3 verifies every peer's round-2 opening and proof, aggregates
// (R, v), samples this party's blinding share (rho_i, c_i), and commits to
// (u_i, w_i). A verification failure for any peer sets the aborted flag
// but never halts the round.
func (s *PlainSigner) PlainRound3(round2 map[int]*PlainRound2Message) (*PlainRound3Message, error) {
	if s.round != 2 {
		return nil, ErrUnexpectedRound
	}
	s.round = 3
	common.Logger.Debugf("plain signing: party %d: round 3 starting", s.selfID)
	if err := requirePeers(s.peers, round2); err != nil {
		return nil, err
	}

	pk := s.pk()
	var aggR *crypto.ECPoint
	var aggV *big.Int

	for _, id := range s.peers {
		msg := round2[id]
		cmt := s.commitments1[id]
		if cmt == nil || !commitment.Verify(s.params.MasterKey, cmt, msg.Opening) {
			s.abort(fmt.Errorf("signing: commitment verification failed for party %d", id))
		}
		r, v, err := unpackNonceSecrets(s.params.Curve, msg.Opening.Secrets)
		if err != nil {
			s.abort(err)
			continue
		}
		if msg.Proof == nil || !msg.Proof.Verify(pk, s.params.Aux, s.params.encOne, v, s.params.Q, r) {
			common.Logger.Warnf("plain signing: party %d: nonce relation proof failed for party %d", s.selfID, id)
			s.abort(fmt.Errorf("signing: nonce relation proof failed for party %d", id))
		}

		if aggR == nil {
			aggR, aggV = r, v
			continue
		}
		var err2 error
		if aggR, err2 = aggR.Add(r); err2 != nil {
			s.abort(err2)
		}
		if aggV, err2 = pk.Add(aggV, v); err2 != nil {
			s.abort(err2)
		}
	}
	s.aggR = aggR
	s.aggV = aggV
	s.finalR = new(big.Int).Mod(aggR.X(), s.params.Q)

	s.rho = common.GetRandomPositiveInt(s.params.Q)
	s.rU = common.GetRandomPositiveRelativelyPrimeInt(pk.N)
	u, err := pk.EncryptWithRandomness(s.rho, s.rU)
	if err != nil {
		return nil, err
	}
	s.u = u

	s.c = common.GetRandomPositiveInt(s.params.CBound)
	s.rW = common.GetRandomPositiveRelativelyPrimeInt(pk.N)
	w, err := pk.EncryptWithRandomness(s.c, s.rW)
	if err != nil {
		return nil, err
	}
	s.w = w

	cmt, opening, err := commitment.Commit(s.params.MasterKey, packBlindingSecrets(s.u, s.w)...)
	if err != nil {
		return nil, err
	}
	s.opening2 = opening

	common.Logger.Debugf("plain signing: party %d: round 3 finished", s.selfID)
	return &PlainRound3Message{Commitment: cmt}, nil
}

// PlainRound4 records every peer's round-3 commitment and returns this
// party's opening, proofs, and z_i = Multiply(rho_i, aggV) + Encrypt(c_i *
// q), its share of the aggregated product k*rho.
func (s *PlainSigner) PlainRound4(round3 map[int]*PlainRound3Message) (*PlainRound4Message, error) {
	if s.round != 3 {
		return nil, ErrUnexpectedRound
	}
	s.round = 4
	common.Logger.Debugf("plain signing: party %d: round 4 starting", s.selfID)
	if err := requirePeers(s.peers, round3); err != nil {
		return nil, err
	}
	s.commitments2 = make(map[int]*commitment.Commitment, len(s.peers))
	for id, msg := range round3 {
		s.commitments2[id] = msg.Commitment
	}

	pk := s.pk()
	encU := zkp.ProveEncryption(pk, s.u, s.rho, s.rU)
	rangeW := zkp.ProveRange(pk, s.params.Aux, s.w, s.c, s.rW, s.params.CBound)

	rhoV, err := pk.Multiply(s.rho, s.aggV)
	if err != nil {
		return nil, err
	}
	cQ := new(big.Int).Mul(s.c, s.params.Q)
	encCQ, err := pk.Encrypt(cQ)
	if err != nil {
		return nil, err
	}
	z, err := pk.Add(rhoV, encCQ)
	if err != nil {
		return nil, err
	}

	common.Logger.Debugf("plain signing: party %d: round 4 finished", s.selfID)
	return &PlainRound4Message{Opening: s.opening2, EncU: encU, RangeW: rangeW, Z: z}, nil
}

// PlainRound5 verifies every peer's round-4 opening and proofs, aggregates
// Z = sum z_j, and returns this party's partial decryption of Z.
func (s *PlainSigner) PlainRound5(round4 map[int]*PlainRound4Message) (*PlainRound5Message, error) {
	if s.round != 4 {
		return nil, ErrUnexpectedRound
	}
	s.round = 5
	common.Logger.Debugf("plain signing: party %d: round 5 starting", s.selfID)
	if err := requirePeers(s.peers, round4); err != nil {
		return nil, err
	}

	pk := s.pk()
	var aggZ *big.Int
	for _, id := range s.peers {
		msg := round4[id]
		cmt := s.commitments2[id]
		if cmt == nil || !commitment.Verify(s.params.MasterKey, cmt, msg.Opening) {
			s.abort(fmt.Errorf("signing: commitment verification failed for party %d", id))
		}
		u, w, err := unpackBlindingSecrets(msg.Opening.Secrets)
		if err != nil {
			s.abort(err)
			continue
		}
		if msg.EncU == nil || !msg.EncU.Verify(pk, u) {
			s.abort(fmt.Errorf("signing: blinding encryption proof failed for party %d", id))
		}
		if msg.RangeW == nil || !msg.RangeW.Verify(pk, s.params.Aux, w, s.params.CBound) {
			s.abort(fmt.Errorf("signing: blinding range proof failed for party %d", id))
		}
		if msg.Z == nil {
			s.abort(fmt.Errorf("signing: missing z contribution from party %d", id))
			continue
		}

		if aggZ == nil {
			aggZ = msg.Z
			continue
		}
		var err2 error
		if aggZ, err2 = pk.Add(aggZ, msg.Z); err2 != nil {
			s.abort(err2)
		}
	}

	mu := s.share.Decrypt(aggZ)
	common.Logger.Debugf("plain signing: party %d: round 5 finished", s.selfID)
	return &PlainRound5Message{Mu: mu}, nil
}

// PlainRound6 combines the peer partial decryptions of Z to recover mu =
// k*rho + q*C mod n, reduces it mod q, and inverts it to get
// psi = (rho*k)^-1. Since psi alone would leave the aggregate rho baked
// into the result (plain Paillier has no ciphertext-by-ciphertext product
// to multiply it back out homomorphically as a whole), every party
// instead contributes term_i = Multiply(psi*rho_i mod q, sumEnc): an
// individually-scaled encryption using this party's own never-revealed
// rho_i. Adding every party's term_i (round 7) recovers
// Encrypt(psi*rho*(mPrime + r*x)) = Encrypt(k^-1*(mPrime + r*x)) without
// ever decrypting rho or k.
func (s *PlainSigner) PlainRound6(round5 map[int]*PlainRound5Message) (*PlainRound6Message, error) {
	if s.round != 5 {
		return nil, ErrUnexpectedRound
	}
	s.round = 6
	common.Logger.Debugf("plain signing: party %d: round 6 starting", s.selfID)
	if err := requirePeers(s.peers, round5); err != nil {
		return nil, err
	}

	parts := make([]*paillier.PartialDecryption, 0, len(s.peers))
	for _, id := range s.peers {
		parts = append(parts, round5[id].Mu)
	}
	muN, err := s.params.PublicKey.CombinePartialDecryptions(parts)
	if err != nil {
		return nil, err
	}
	muQ := new(big.Int).Mod(muN, s.params.Q)
	if muQ.Sign() == 0 {
		s.abort(ErrNotInvertible)
		muQ = big.NewInt(1)
	}
	psi := new(big.Int).ModInverse(muQ, s.params.Q)
	if psi == nil {
		s.abort(ErrNotInvertible)
		psi = big.NewInt(1)
	}

	pk := s.pk()
	encM, err := pk.Encrypt(s.mPrime)
	if err != nil {
		return nil, err
	}
	rKey, err := pk.Multiply(s.finalR, s.params.EncryptedDSAKeyPlain)
	if err != nil {
		return nil, err
	}
	sumEnc, err := pk.Add(encM, rKey)
	if err != nil {
		return nil, err
	}
	s.sumEnc = sumEnc

	scale := new(big.Int).Mod(new(big.Int).Mul(psi, s.rho), s.params.Q)
	term, err := pk.Multiply(scale, sumEnc)
	if err != nil {
		return nil, err
	}

	common.Logger.Debugf("plain signing: party %d: round 6 finished", s.selfID)
	return &PlainRound6Message{Term: term}, nil
}

// PlainRound7 aggregates every peer's term_i into Encrypt(sigma) and
// returns this party's partial decryption of it.
func (s *PlainSigner) PlainRound7(round6 map[int]*PlainRound6Message) (*PlainRound7Message, error) {
	if s.round != 6 {
		return nil, ErrUnexpectedRound
	}
	s.round = 7
	common.Logger.Debugf("plain signing: party %d: round 7 starting", s.selfID)
	if err := requirePeers(s.peers, round6); err != nil {
		return nil, err
	}

	pk := s.pk()
	var aggTerm *big.Int
	for _, id := range s.peers {
		msg := round6[id]
		if msg.Term == nil {
			s.abort(fmt.Errorf("signing: missing term contribution from party %d", id))
			continue
		}
		if aggTerm == nil {
			aggTerm = msg.Term
			continue
		}
		var err error
		if aggTerm, err = pk.Add(aggTerm, msg.Term); err != nil {
			s.abort(err)
		}
	}

	sigmaShare := s.share.Decrypt(aggTerm)
	common.Logger.Debugf("plain signing: party %d: round 7 finished", s.selfID)
	return &PlainRound7Message{Sigma: sigmaShare}, nil
}

// Finalize combines the peer partial decryptions of sigma to recover s,
// canonicalizes it to low-S form, and returns the signature.
func (s *PlainSigner) Finalize(round7 map[int]*PlainRound7Message) (*Signature, bool, error) {
	if s.round != 7 {
		return nil, false, ErrUnexpectedRound
	}
	if err := requirePeers(s.peers, round7); err != nil {
		return nil, false, err
	}

	parts := make([]*paillier.PartialDecryption, 0, len(s.peers))
	for _, id := range s.peers {
		parts = append(parts, round7[id].Sigma)
	}
	sig, err := s.params.PublicKey.CombinePartialDecryptions(parts)
	if err != nil {
		return nil, false, err
	}
	sigQ := new(big.Int).Mod(sig, s.params.Q)
	halfQ := new(big.Int).Rsh(s.params.Q, 1)
	if sigQ.Cmp(halfQ) > 0 {
		sigQ = new(big.Int).Sub(s.params.Q, sigQ)
	}

	signature := &Signature{R: s.finalR, S: sigQ}
	if s.aborted {
		common.Logger.Warnf("plain signing: party %d: protocol aborted: %v", s.selfID, s.reason)
		return signature, false, fmt.Errorf("%w: %v", ErrProtocolAbort, s.reason)
	}
	common.Logger.Infof("plain signing: party %d: signature finalized", s.selfID)
	return signature, true, nil
}
