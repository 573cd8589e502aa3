package paillier

import (
	"context"
	"math/big"
	"testing"
)

func testKeyPair(t *testing.T) (*PrivateKey, *PublicKey) {
	t.Helper()
	sk, pk, err := GenerateKeyPair(context.Background(), 256)
	if err != nil {
		t.Fatalf("GenerateKeyPair() unexpected error = %v", err)
	}
	return sk, pk
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	sk, pk := testKeyPair(t)
	m := big.NewInt(42)

	c, err := pk.Encrypt(m)
	if err != nil {
		t.Fatalf("Encrypt() unexpected error = %v", err)
	}
	got, err := sk.Decrypt(c)
	if err != nil {
		t.Fatalf("Decrypt() unexpected error = %v", err)
	}
	if got.Cmp(m) != 0 {
		t.Errorf("Decrypt() = %v, want %v", got, m)
	}
}

func TestEncryptRejectsOutOfRangeMessage(t *testing.T) {
	_, pk := testKeyPair(t)
	if _, err := pk.Encrypt(new(big.Int).Neg(big.NewInt(1))); err != ErrMessageTooLong {
		t.Errorf("Encrypt() negative message error = %v, want ErrMessageTooLong", err)
	}
	if _, err := pk.Encrypt(pk.N); err != ErrMessageTooLong {
		t.Errorf("Encrypt() message == N error = %v, want ErrMessageTooLong", err)
	}
}

func TestHomomorphicAdd(t *testing.T) {
	sk, pk := testKeyPair(t)
	m1, m2 := big.NewInt(17), big.NewInt(25)

	c1, _ := pk.Encrypt(m1)
	c2, _ := pk.Encrypt(m2)
	cSum, err := pk.Add(c1, c2)
	if err != nil {
		t.Fatalf("Add() unexpected error = %v", err)
	}
	got, err := sk.Decrypt(cSum)
	if err != nil {
		t.Fatalf("Decrypt() unexpected error = %v", err)
	}
	want := new(big.Int).Add(m1, m2)
	if got.Cmp(want) != 0 {
		t.Errorf("Decrypt(Add(E(m1),E(m2))) = %v, want %v", got, want)
	}
}

func TestHomomorphicMultiply(t *testing.T) {
	sk, pk := testKeyPair(t)
	m, scalar := big.NewInt(6), big.NewInt(7)

	c, _ := pk.Encrypt(m)
	cMul, err := pk.Multiply(scalar, c)
	if err != nil {
		t.Fatalf("Multiply() unexpected error = %v", err)
	}
	got, err := sk.Decrypt(cMul)
	if err != nil {
		t.Fatalf("Decrypt() unexpected error = %v", err)
	}
	want := new(big.Int).Mul(m, scalar)
	if got.Cmp(want) != 0 {
		t.Errorf("Decrypt(Multiply(scalar,E(m))) = %v, want %v", got, want)
	}
}

func TestRerandomizePreservesPlaintext(t *testing.T) {
	sk, pk := testKeyPair(t)
	m := big.NewInt(9001)

	c, _ := pk.Encrypt(m)
	c2, err := pk.Rerandomize(c)
	if err != nil {
		t.Fatalf("Rerandomize() unexpected error = %v", err)
	}
	if c.Cmp(c2) == 0 {
		t.Error("Rerandomize() returned the same ciphertext bytes")
	}
	got, err := sk.Decrypt(c2)
	if err != nil {
		t.Fatalf("Decrypt() unexpected error = %v", err)
	}
	if got.Cmp(m) != 0 {
		t.Errorf("Decrypt(Rerandomize(c)) = %v, want %v", got, m)
	}
}

func TestProveVerifyWellFormedness(t *testing.T) {
	sk, pk := testKeyPair(t)
	ctx := []byte("session-1")

	proof := sk.Prove(ctx)
	ok, err := proof.Verify(pk.N, ctx)
	if err != nil {
		t.Fatalf("Verify() unexpected error = %v", err)
	}
	if !ok {
		t.Error("Verify() = false, want true for an honestly generated proof")
	}
}

func TestVerifyRejectsWrongContext(t *testing.T) {
	sk, pk := testKeyPair(t)
	proof := sk.Prove([]byte("session-1"))
	ok, err := proof.Verify(pk.N, []byte("session-2"))
	if err != nil {
		t.Fatalf("Verify() unexpected error = %v", err)
	}
	if ok {
		t.Error("Verify() = true for a proof replayed under a different session context, want false")
	}
}
