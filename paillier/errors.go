package paillier

import "github.com/pkg/errors"

// ErrMessageTooLong is returned when a plaintext falls outside [0, N).
var ErrMessageTooLong = errors.New("paillier: message is out of range [0, N)")

// ErrCiphertextTooLong is returned when a ciphertext falls outside [0, N^2).
var ErrCiphertextTooLong = errors.New("paillier: ciphertext is out of range [0, N^2)")

// ErrMessageMalformed is returned when a ciphertext shares a common factor
// with N^2, which should never happen for a well-formed encryption.
var ErrMessageMalformed = errors.New("paillier: ciphertext is malformed (gcd(c, N^2) != 1)")

// ErrInsufficientShares is returned when fewer than the reconstruction
// threshold w partial decryptions are supplied to CombinePartialDecryptions.
var ErrInsufficientShares = errors.New("paillier: threshold not met")

// ErrDuplicateShare is returned when two partial decryptions carry the same
// server id.
var ErrDuplicateShare = errors.New("paillier: duplicate partial decryption from the same server")

// ErrKeyMismatch names a partial decryption whose modulus doesn't match the
// threshold public key combining it. No function in this package returns
// it; CombinePartialDecryptions does not compare moduli.
var ErrKeyMismatch = errors.New("paillier: partial decryption does not match this threshold key")

// ErrProofFailure names a failed zero-knowledge proof check. No function in
// this package returns it; zkp.DecryptionZKP.Verify reports failure as false.
var ErrProofFailure = errors.New("paillier: zero-knowledge proof failed to verify")
