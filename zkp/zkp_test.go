package zkp

import (
	"context"
	"math/big"
	"testing"

	"github.com/citp/ThresholdECDSA/crypto"
	"github.com/citp/ThresholdECDSA/paillier"
)

func testPaillierKeyPair(t *testing.T) (*paillier.PrivateKey, *paillier.PublicKey) {
	t.Helper()
	sk, pk, err := paillier.GenerateKeyPair(context.Background(), 256)
	if err != nil {
		t.Fatalf("paillier.GenerateKeyPair() unexpected error = %v", err)
	}
	return sk, pk
}

func testThresholdKeys(t *testing.T) (*paillier.ThresholdPublicKey, []*paillier.ThresholdPrivateShare) {
	t.Helper()
	pub, shares, err := paillier.GenerateThresholdKeyPairs(context.Background(), 256, 3, 2)
	if err != nil {
		t.Fatalf("paillier.GenerateThresholdKeyPairs() unexpected error = %v", err)
	}
	return pub, shares
}

func testAuxParams(t *testing.T) *AuxiliaryParameters {
	t.Helper()
	aux, proof, err := GenerateAuxiliaryParameters(context.Background(), 256)
	if err != nil {
		t.Fatalf("GenerateAuxiliaryParameters() unexpected error = %v", err)
	}
	if !proof.Verify(aux.NTilde, aux.H1, aux.H2) {
		t.Fatalf("AuxiliaryParameterProof.Verify() = false for an honestly generated proof")
	}
	return aux
}

func TestDecryptionZKPRoundTrip(t *testing.T) {
	pub, shares := testThresholdKeys(t)
	m := big.NewInt(7)
	c, err := pub.Encrypt(m)
	if err != nil {
		t.Fatalf("Encrypt() unexpected error = %v", err)
	}

	proofs := make([]*DecryptionZKP, len(shares))
	partials := make([]*paillier.PartialDecryption, len(shares))
	for i, share := range shares {
		pf := ProvePartialDecryption(share, c)
		if !pf.Verify(pub) {
			t.Fatalf("DecryptionZKP.Verify() = false for share %d", share.Id)
		}
		proofs[i] = pf
		partials[i] = &pf.PartialDecryption
	}

	got, err := pub.CombinePartialDecryptions(partials[:pub.W])
	if err != nil {
		t.Fatalf("CombinePartialDecryptions() unexpected error = %v", err)
	}
	if got.Cmp(m) != 0 {
		t.Errorf("CombinePartialDecryptions() = %v, want %v", got, m)
	}
}

func TestDecryptionZKPRejectsTamperedProof(t *testing.T) {
	pub, shares := testThresholdKeys(t)
	c, _ := pub.Encrypt(big.NewInt(3))
	pf := ProvePartialDecryption(shares[0], c)
	pf.Z = new(big.Int).Add(pf.Z, big.NewInt(1))
	if pf.Verify(pub) {
		t.Error("DecryptionZKP.Verify() = true for a tampered proof, want false")
	}
}

func TestEncryptionZKPRoundTrip(t *testing.T) {
	_, pk := testPaillierKeyPair(t)
	alpha := big.NewInt(123)
	c, s, err := pk.EncryptAndReturnRandomness(alpha)
	if err != nil {
		t.Fatalf("EncryptAndReturnRandomness() unexpected error = %v", err)
	}

	pf := ProveEncryption(pk, c, alpha, s)
	if !pf.Verify(pk, c) {
		t.Error("EncryptionZKP.Verify() = false for an honestly generated proof")
	}
}

func TestEncryptionZKPRejectsWrongCiphertext(t *testing.T) {
	_, pk := testPaillierKeyPair(t)
	alpha := big.NewInt(5)
	c, s, _ := pk.EncryptAndReturnRandomness(alpha)
	pf := ProveEncryption(pk, c, alpha, s)

	other, _ := pk.Encrypt(big.NewInt(6))
	if pf.Verify(pk, other) {
		t.Error("EncryptionZKP.Verify() = true against a different ciphertext, want false")
	}
}

func TestMultiplicationZKPRoundTrip(t *testing.T) {
	sk, pk := testPaillierKeyPair(t)
	a, alpha := big.NewInt(11), big.NewInt(4)

	c, err := pk.Encrypt(a)
	if err != nil {
		t.Fatalf("Encrypt() unexpected error = %v", err)
	}
	d, err := pk.Multiply(alpha, c)
	if err != nil {
		t.Fatalf("Multiply() unexpected error = %v", err)
	}
	r, err := pk.Rerandomize(d)
	if err != nil {
		t.Fatalf("Rerandomize() unexpected error = %v", err)
	}

	// recover the effective rerandomization factor relative to d: since
	// Rerandomize multiplies by s^N for fresh s, and Multiply itself applies
	// no additional randomness beyond c's own, the proof is constructed
	// against the deterministic multiply output d and randomness 1 to keep
	// the test self-contained.
	pf := ProveMultiplication(pk, c, d, alpha, big.NewInt(1))
	if !pf.Verify(pk, c, d) {
		t.Error("MultiplicationZKP.Verify() = false for an honestly generated proof")
	}

	got, err := sk.Decrypt(r)
	if err != nil {
		t.Fatalf("Decrypt() unexpected error = %v", err)
	}
	want := new(big.Int).Mul(a, alpha)
	if got.Cmp(want) != 0 {
		t.Errorf("Decrypt(Rerandomize(Multiply(alpha,E(a)))) = %v, want %v", got, want)
	}
}

func TestRangeProofRoundTrip(t *testing.T) {
	_, pk := testPaillierKeyPair(t)
	aux := testAuxParams(t)
	bound := new(big.Int).Lsh(big.NewInt(1), 64)
	m := big.NewInt(42)

	c, r, err := pk.EncryptAndReturnRandomness(m)
	if err != nil {
		t.Fatalf("EncryptAndReturnRandomness() unexpected error = %v", err)
	}
	pf := ProveRange(pk, aux, c, m, r, bound)
	if !pf.Verify(pk, aux, c, bound) {
		t.Error("RangeProof.Verify() = false for an honestly generated proof")
	}
}

func TestRangeProofRejectsOutOfBoundMessage(t *testing.T) {
	_, pk := testPaillierKeyPair(t)
	aux := testAuxParams(t)
	bound := big.NewInt(1000)
	m := big.NewInt(999999) // far outside [0, bound)

	c, r, _ := pk.EncryptAndReturnRandomness(m)
	pf := ProveRange(pk, aux, c, m, r, bound)
	if pf.Verify(pk, aux, c, bound) {
		t.Error("RangeProof.Verify() = true for an out-of-bound plaintext, want false")
	}
}

func TestRelationProofRoundTrip(t *testing.T) {
	_, pk := testPaillierKeyPair(t)
	aux := testAuxParams(t)
	curve := crypto.EC()
	bound := curve.Params().N

	a := big.NewInt(17)
	c1, err := pk.Encrypt(a)
	if err != nil {
		t.Fatalf("Encrypt() unexpected error = %v", err)
	}

	x := big.NewInt(9)
	gamma := big.NewInt(5)
	xPoint := crypto.ScalarBaseMult(curve, x)

	xa, err := pk.Multiply(x, c1)
	if err != nil {
		t.Fatalf("Multiply() unexpected error = %v", err)
	}
	encGamma, r, err := pk.EncryptAndReturnRandomness(gamma)
	if err != nil {
		t.Fatalf("EncryptAndReturnRandomness() unexpected error = %v", err)
	}
	c2, err := pk.Add(xa, encGamma)
	if err != nil {
		t.Fatalf("Add() unexpected error = %v", err)
	}

	pf := ProveRelation(pk, aux, c1, c2, x, gamma, r, bound, xPoint)
	if !pf.Verify(pk, aux, c1, c2, bound, xPoint) {
		t.Error("RelationProof.Verify() = false for an honestly generated proof")
	}
}

func TestRelationProofRejectsWrongPoint(t *testing.T) {
	_, pk := testPaillierKeyPair(t)
	aux := testAuxParams(t)
	curve := crypto.EC()
	bound := curve.Params().N

	a := big.NewInt(3)
	c1, _ := pk.Encrypt(a)
	x := big.NewInt(6)
	gamma := big.NewInt(2)
	xPoint := crypto.ScalarBaseMult(curve, x)

	xa, _ := pk.Multiply(x, c1)
	encGamma, r, _ := pk.EncryptAndReturnRandomness(gamma)
	c2, _ := pk.Add(xa, encGamma)

	pf := ProveRelation(pk, aux, c1, c2, x, gamma, r, bound, xPoint)

	wrongPoint := crypto.ScalarBaseMult(curve, big.NewInt(7))
	if pf.Verify(pk, aux, c1, c2, bound, wrongPoint) {
		t.Error("RelationProof.Verify() = true against the wrong EC point, want false")
	}
}
