package signing

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/citp/ThresholdECDSA/commitment"
	"github.com/citp/ThresholdECDSA/common"
	"github.com/citp/ThresholdECDSA/crypto"
	"github.com/citp/ThresholdECDSA/l2fhe"
	"github.com/citp/ThresholdECDSA/paillier"
)

// Signer drives one party's side of the four-round L2FHE threshold-ECDSA
// protocol. Round methods are called in order; each consumes the peer
// messages of the previous round (keyed by party id, including the
// caller's own message) and returns the message for the next round.
type Signer struct {
	params *SharedParams
	share  *paillier.ThresholdPrivateShare
	selfID int
	peers  []int // sorted participant ids, including selfID
	mPrime *big.Int

	round int

	// round 1 secrets
	rho, bU, rU *big.Int
	k, rK       *big.Int
	c, rW       *big.Int
	r           *crypto.ECPoint
	u, v, w     *l2fhe.L1Ciphertext
	opening     *commitment.Opening

	commitments map[int]*commitment.Commitment

	// round 3 results
	aggR               *crypto.ECPoint
	aggU               *l2fhe.L1Ciphertext
	finalR             *big.Int
	z                  *l2fhe.L2Ciphertext
	ownEta             *l2fhe.L2PartialDecryption
	ownSigma           *l2fhe.L2PartialDecryption

	aborted bool
	reason  error
}

// NewSigner constructs a Signer for selfID, a member of participants
// (which must include selfID), signing the SHA-256 (or other) digest
// message using share's threshold-Paillier decryption key.
func NewSigner(params *SharedParams, share *paillier.ThresholdPrivateShare, selfID int, participants []int, message []byte) (*Signer, error) {
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
	return &Signer{
		params: params,
		share:  share,
		selfID: selfID,
		peers:  peers,
		mPrime: truncateDigest(params.Q, message),
	}, nil
}

func (s *Signer) abort(reason error) {
	if !s.aborted {
		s.aborted = true
		s.reason = reason
	}
}

// Round1 samples this party's (rho, k, c), computes R = k*G and the three
// L1 encryptions, and commits to the tuple.
func (s *Signer) Round1() (*Round1Message, error) {
	if s.round != 0 {
		return nil, ErrUnexpectedRound
	}
	s.round = 1
	common.Logger.Debugf("signing: party %d: round 1 starting", s.selfID)
	pk := s.params.paillierPublicKey()

	s.rho = common.GetRandomPositiveInt(s.params.Q)
	s.k = common.GetRandomPositiveInt(s.params.Q)
	s.c = common.GetRandomPositiveInt(s.params.CBound)
	s.r = crypto.ScalarBaseMult(s.params.Curve, s.k)

	var err error
	s.bU = common.GetRandomPositiveInt(pk.N)
	s.rU = common.GetRandomPositiveRelativelyPrimeInt(pk.N)
	s.u, err = l2fhe.Encrypt1(pk, s.rho, s.bU, s.rU)
	if err != nil {
		return nil, err
	}

	s.rK = common.GetRandomPositiveRelativelyPrimeInt(pk.N)
	vBeta, err := pk.EncryptWithRandomness(s.k, s.rK)
	if err != nil {
		return nil, err
	}
	s.v = &l2fhe.L1Ciphertext{A: big.NewInt(0), Beta: vBeta}

	s.rW = common.GetRandomPositiveRelativelyPrimeInt(pk.N)
	wBeta, err := pk.EncryptWithRandomness(s.c, s.rW)
	if err != nil {
		return nil, err
	}
	s.w = &l2fhe.L1Ciphertext{A: big.NewInt(0), Beta: wBeta}

	secrets := packOpeningSecrets(s.r, s.u, s.v, s.w)
	cmt, opening, err := commitment.Commit(s.params.MasterKey, secrets...)
	if err != nil {
		return nil, err
	}
	s.opening = opening

	common.Logger.Debugf("signing: party %d: round 1 finished", s.selfID)
	return &Round1Message{Commitment: cmt}, nil
}

// Round2 records every peer's round-1 commitment (including this party's
// own) and returns this party's opening plus its composite proof.
func (s *Signer) Round2(round1 map[int]*Round1Message) (*Round2Message, error) {
	if s.round != 1 {
		return nil, ErrUnexpectedRound
	}
	s.round = 2
	common.Logger.Debugf("signing: party %d: round 2 starting", s.selfID)
	if err := requirePeers(s.peers, round1); err != nil {
		return nil, err
	}
	s.commitments = make(map[int]*commitment.Commitment, len(s.peers))
	for id, msg := range round1 {
		s.commitments[id] = msg.Commitment
	}

	proof := proveOpening(s.params, s.bU, s.rU, s.k, s.rK, s.c, s.rW, s.u, s.v, s.w, s.r)
	common.Logger.Debugf("signing: party %d: round 2 finished", s.selfID)
	return &Round2Message{Opening: s.opening, Proof: proof}, nil
}

// Round3 verifies every peer's round-2 opening and proof, aggregates
// (R, u, v, w), computes r and the L2 ciphertext z = (w*q) + (u*v), and
// returns this party's partial decryption of z. A verification failure
// for any peer sets this party's aborted flag but does not stop the
// round: the aggregation still runs on whatever values were opened so
// message production stays on schedule.
func (s *Signer) Round3(round2 map[int]*Round2Message) (*Round3Message, error) {
	if s.round != 2 {
		return nil, ErrUnexpectedRound
	}
	s.round = 3
	common.Logger.Debugf("signing: party %d: round 3 starting", s.selfID)
	if err := requirePeers(s.peers, round2); err != nil {
		return nil, err
	}

	pk := s.params.paillierPublicKey()
	var aggR *crypto.ECPoint
	var aggU, aggV, aggW *l2fhe.L1Ciphertext

	for _, id := range s.peers {
		msg := round2[id]
		cmt := s.commitments[id]
		if cmt == nil || !commitment.Verify(s.params.MasterKey, cmt, msg.Opening) {
			common.Logger.Warnf("signing: party %d: commitment verification failed for party %d", s.selfID, id)
			s.abort(fmt.Errorf("signing: commitment verification failed for party %d", id))
		}
		r, u, v, w, err := unpackOpeningSecrets(s.params.Curve, msg.Opening.Secrets)
		if err != nil {
			s.abort(err)
			continue
		}
		if verr := verifyOpening(s.params, msg.Proof, r, u, v, w); verr != nil {
			common.Logger.Warnf("signing: party %d: opening proof verification failed for party %d: %v", s.selfID, id, verr)
			s.abort(fmt.Errorf("signing: opening proof verification failed for party %d: %w", id, verr))
		}

		if aggR == nil {
			aggR, aggU, aggV, aggW = r, u, v, w
			continue
		}
		var err2 error
		if aggR, err2 = aggR.Add(r); err2 != nil {
			s.abort(err2)
		}
		if aggU, err2 = l2fhe.AddL1(pk, aggU, u); err2 != nil {
			s.abort(err2)
		}
		if aggV, err2 = l2fhe.AddL1(pk, aggV, v); err2 != nil {
			s.abort(err2)
		}
		if aggW, err2 = l2fhe.AddL1(pk, aggW, w); err2 != nil {
			s.abort(err2)
		}
	}

	s.aggR = aggR
	s.aggU = aggU
	s.finalR = new(big.Int).Mod(aggR.X(), s.params.Q)

	uv, err := l2fhe.Mult(pk, aggU, aggV)
	if err != nil {
		return nil, err
	}
	wq, err := l2fhe.CMultL1(pk, aggW, s.params.Q)
	if err != nil {
		return nil, err
	}
	z, err := l2fhe.AddMixed(pk, wq, uv)
	if err != nil {
		return nil, err
	}
	s.z = z
	s.ownEta = l2fhe.PartialDecryptL2(s.share, z)

	common.Logger.Debugf("signing: party %d: round 3 finished", s.selfID)
	return &Round3Message{Eta: s.ownEta}, nil
}

// Round4 combines the threshold partial decryptions of z to recover eta =
// rho*k mod q, inverts it mod q to get psi = (rho*k)^-1, multiplies the
// aggregate rho ciphertext by psi to recover Enc1(k^-1), and forms
// sigma = k^-1 * (Enc1(mPrime) + r * EncryptedDSAKey) as one L2
// multiplication, returning this party's partial decryption of sigma.
func (s *Signer) Round4(round3 map[int]*Round3Message) (*Round4Message, error) {
	if s.round != 3 {
		return nil, ErrUnexpectedRound
	}
	s.round = 4
	common.Logger.Debugf("signing: party %d: round 4 starting", s.selfID)
	if err := requirePeers(s.peers, round3); err != nil {
		return nil, err
	}

	parts := make([]*l2fhe.L2PartialDecryption, 0, len(s.peers))
	for _, id := range s.peers {
		parts = append(parts, round3[id].Eta)
	}
	eta, err := l2fhe.CombineL2(s.params.PublicKey, parts)
	if err != nil {
		return nil, err
	}
	etaQ := new(big.Int).Mod(eta, s.params.Q)
	if etaQ.Sign() == 0 {
		s.abort(ErrNotInvertible)
		etaQ = big.NewInt(1)
	}
	psi := new(big.Int).ModInverse(etaQ, s.params.Q)
	if psi == nil {
		s.abort(ErrNotInvertible)
		psi = big.NewInt(1)
	}

	pk := s.params.paillierPublicKey()

	// psi = (rho*k)^-1 alone would leave the aggregate rho blinding rho*k
	// baked into the result; CMult-ing the aggregate u = Enc1(rho) by the
	// now-public psi recovers Enc1(rho * psi) = Enc1(k^-1), the classical
	// Paillier-ECDSA blinding trick of decrypting a randomized product and
	// then multiplying the random factor back in homomorphically.
	encKInv, err := l2fhe.CMultL1(pk, s.aggU, psi)
	if err != nil {
		return nil, err
	}

	bM := common.GetRandomPositiveInt(pk.N)
	rM := common.GetRandomPositiveRelativelyPrimeInt(pk.N)
	encM, err := l2fhe.Encrypt1(pk, s.mPrime, bM, rM)
	if err != nil {
		return nil, err
	}
	rKey, err := l2fhe.CMultL1(pk, s.params.EncryptedDSAKey, s.finalR)
	if err != nil {
		return nil, err
	}
	sumEnc, err := l2fhe.AddL1(pk, encM, rKey)
	if err != nil {
		return nil, err
	}

	sigma, err := l2fhe.Mult(pk, encKInv, sumEnc)
	if err != nil {
		return nil, err
	}
	s.ownSigma = l2fhe.PartialDecryptL2(s.share, sigma)

	common.Logger.Debugf("signing: party %d: round 4 finished", s.selfID)
	return &Round4Message{Sigma: s.ownSigma}, nil
}

// Finalize combines the threshold partial decryptions of sigma to recover
// s, canonicalizes it to low-S form, and returns the signature. If this
// party observed a verification failure earlier in the protocol, ok is
// false and reason names the first such failure.
func (s *Signer) Finalize(round4 map[int]*Round4Message) (*Signature, bool, error) {
	if s.round != 4 {
		return nil, false, ErrUnexpectedRound
	}
	if err := requirePeers(s.peers, round4); err != nil {
		return nil, false, err
	}

	parts := make([]*l2fhe.L2PartialDecryption, 0, len(s.peers))
	for _, id := range s.peers {
		parts = append(parts, round4[id].Sigma)
	}
	sig, err := l2fhe.CombineL2(s.params.PublicKey, parts)
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
		common.Logger.Warnf("signing: party %d: protocol aborted: %v", s.selfID, s.reason)
		return signature, false, fmt.Errorf("%w: %v", ErrProtocolAbort, s.reason)
	}
	common.Logger.Infof("signing: party %d: signature finalized", s.selfID)
	return signature, true, nil
}

// requirePeers checks that have contains an entry for every party in
// s.peers, including this party's own id.
func requirePeers[T any](peers []int, have map[int]T) error {
	for _, id := range peers {
		if _, ok := have[id]; !ok {
			return ErrMissingPeer
		}
	}
	return nil
}
