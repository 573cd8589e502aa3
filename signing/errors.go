package signing

import "errors"

// Sentinel errors for the protocol-level failures listed in the error
// taxonomy. Cryptographic ZKP/commitment failures inside a round do not
// surface as Go errors from the round methods; they set the party's
// aborted flag per the failure semantics of the signing protocol, and are
// only reported, wrapped in ErrProtocolAbort, once Finalize is called.
var (
	// ErrProtocolAbort is returned by Finalize when this party (or the
	// plain-Paillier variant) observed a cryptographic check fail at some
	// point during the protocol. The signature is unusable.
	ErrProtocolAbort = errors.New("signing: protocol aborted, no signature produced")

	// ErrDuplicateParty names a combine step given two contributions
	// claiming the same party id. No round method returns it: the combine
	// steps return the paillier error unwrapped, paillier.ErrDuplicateShare
	// in this case.
	ErrDuplicateParty = errors.New("signing: duplicate party id")

	// ErrInsufficientParties names a combine step with fewer than the
	// threshold number of contributions. No round method returns it: the
	// combine steps return paillier.ErrInsufficientShares unwrapped.
	ErrInsufficientParties = errors.New("signing: insufficient party contributions")

	// ErrUnexpectedRound is returned when a round method is called before
	// its predecessor, or a second time for the same round.
	ErrUnexpectedRound = errors.New("signing: round called out of sequence")

	// ErrMissingPeer is returned when a round's input map does not contain
	// an entry for every party in the participant set.
	ErrMissingPeer = errors.New("signing: missing peer contribution")

	// ErrNotInvertible is returned when a combined value that must be
	// inverted mod q is zero.
	ErrNotInvertible = errors.New("signing: combined value has no inverse mod q")
)
