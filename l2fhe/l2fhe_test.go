package l2fhe

import (
	"context"
	"math/big"
	"testing"

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

func encrypt1(t *testing.T, pk *paillier.PublicKey, m int64) *L1Ciphertext {
	t.Helper()
	b := big.NewInt(m + 17) // arbitrary split, any b works
	r := randomnessFor(t, pk)
	c, err := Encrypt1(pk, big.NewInt(m), b, r)
	if err != nil {
		t.Fatalf("Encrypt1() unexpected error = %v", err)
	}
	return c
}

func randomnessFor(t *testing.T, pk *paillier.PublicKey) *big.Int {
	t.Helper()
	_, r, err := pk.EncryptAndReturnRandomness(big.NewInt(0))
	if err != nil {
		t.Fatalf("EncryptAndReturnRandomness() unexpected error = %v", err)
	}
	return r
}

func TestL1RoundTrip(t *testing.T) {
	sk, pk := testPaillierKeyPair(t)
	c := encrypt1(t, pk, 42)
	got, err := DecryptL1(sk, c)
	if err != nil {
		t.Fatalf("DecryptL1() unexpected error = %v", err)
	}
	if got.Cmp(big.NewInt(42)) != 0 {
		t.Errorf("DecryptL1() = %v, want 42", got)
	}
}

func TestAddL1(t *testing.T) {
	sk, pk := testPaillierKeyPair(t)
	c1, c2 := encrypt1(t, pk, 10), encrypt1(t, pk, 15)
	sum, err := AddL1(pk, c1, c2)
	if err != nil {
		t.Fatalf("AddL1() unexpected error = %v", err)
	}
	got, err := DecryptL1(sk, sum)
	if err != nil {
		t.Fatalf("DecryptL1() unexpected error = %v", err)
	}
	if got.Cmp(big.NewInt(25)) != 0 {
		t.Errorf("DecryptL1(AddL1(10,15)) = %v, want 25", got)
	}
}

func TestCMultL1(t *testing.T) {
	sk, pk := testPaillierKeyPair(t)
	c := encrypt1(t, pk, 6)
	scaled, err := CMultL1(pk, c, big.NewInt(7))
	if err != nil {
		t.Fatalf("CMultL1() unexpected error = %v", err)
	}
	got, err := DecryptL1(sk, scaled)
	if err != nil {
		t.Fatalf("DecryptL1() unexpected error = %v", err)
	}
	if got.Cmp(big.NewInt(42)) != 0 {
		t.Errorf("DecryptL1(CMultL1(6,7)) = %v, want 42", got)
	}
}

func TestMultL1ProducesL2(t *testing.T) {
	sk, pk := testPaillierKeyPair(t)
	c1, c2 := encrypt1(t, pk, 6), encrypt1(t, pk, 7)
	prod, err := Mult(pk, c1, c2)
	if err != nil {
		t.Fatalf("Mult() unexpected error = %v", err)
	}
	got, err := DecryptL2(sk, prod)
	if err != nil {
		t.Fatalf("DecryptL2() unexpected error = %v", err)
	}
	if got.Cmp(big.NewInt(42)) != 0 {
		t.Errorf("DecryptL2(Mult(6,7)) = %v, want 42", got)
	}
}

func TestAddL2(t *testing.T) {
	sk, pk := testPaillierKeyPair(t)
	p1, err := Mult(pk, encrypt1(t, pk, 2), encrypt1(t, pk, 3))
	if err != nil {
		t.Fatalf("Mult() unexpected error = %v", err)
	}
	p2, err := Mult(pk, encrypt1(t, pk, 4), encrypt1(t, pk, 5))
	if err != nil {
		t.Fatalf("Mult() unexpected error = %v", err)
	}
	sum, err := AddL2(pk, p1, p2)
	if err != nil {
		t.Fatalf("AddL2() unexpected error = %v", err)
	}
	got, err := DecryptL2(sk, sum)
	if err != nil {
		t.Fatalf("DecryptL2() unexpected error = %v", err)
	}
	if got.Cmp(big.NewInt(26)) != 0 { // 2*3 + 4*5 = 26
		t.Errorf("DecryptL2(AddL2(2*3,4*5)) = %v, want 26", got)
	}
}

func TestCMultL2(t *testing.T) {
	sk, pk := testPaillierKeyPair(t)
	prod, err := Mult(pk, encrypt1(t, pk, 3), encrypt1(t, pk, 4))
	if err != nil {
		t.Fatalf("Mult() unexpected error = %v", err)
	}
	scaled, err := CMultL2(pk, prod, big.NewInt(5))
	if err != nil {
		t.Fatalf("CMultL2() unexpected error = %v", err)
	}
	got, err := DecryptL2(sk, scaled)
	if err != nil {
		t.Fatalf("DecryptL2() unexpected error = %v", err)
	}
	if got.Cmp(big.NewInt(60)) != 0 { // 3*4*5 = 60
		t.Errorf("DecryptL2(CMultL2(3*4,5)) = %v, want 60", got)
	}
}

func TestAddMixed(t *testing.T) {
	sk, pk := testPaillierKeyPair(t)
	l1 := encrypt1(t, pk, 9)
	l2, err := Mult(pk, encrypt1(t, pk, 2), encrypt1(t, pk, 3))
	if err != nil {
		t.Fatalf("Mult() unexpected error = %v", err)
	}
	sum, err := AddMixed(pk, l1, l2)
	if err != nil {
		t.Fatalf("AddMixed() unexpected error = %v", err)
	}
	got, err := DecryptL2(sk, sum)
	if err != nil {
		t.Fatalf("DecryptL2() unexpected error = %v", err)
	}
	if got.Cmp(big.NewInt(15)) != 0 { // 9 + 2*3 = 15
		t.Errorf("DecryptL2(AddMixed(9,2*3)) = %v, want 15", got)
	}
}

func TestThresholdPartialDecryptL1(t *testing.T) {
	pub, shares, err := paillier.GenerateThresholdKeyPairs(context.Background(), 256, 3, 2)
	if err != nil {
		t.Fatalf("GenerateThresholdKeyPairs() unexpected error = %v", err)
	}
	b := big.NewInt(100)
	r := randomnessFor(t, &pub.PublicKey)
	c, err := Encrypt1(&pub.PublicKey, big.NewInt(142), b, r)
	if err != nil {
		t.Fatalf("Encrypt1() unexpected error = %v", err)
	}

	parts := make([]*L1PartialDecryption, pub.W)
	for i := 0; i < pub.W; i++ {
		parts[i] = PartialDecryptL1(shares[i], c)
	}
	got, err := CombineL1(pub, parts)
	if err != nil {
		t.Fatalf("CombineL1() unexpected error = %v", err)
	}
	if got.Cmp(big.NewInt(142)) != 0 {
		t.Errorf("CombineL1() = %v, want 142", got)
	}
}

// TestThresholdPartialDecryptL1DistinctSubsets checks that two different
// w-sized subsets of the l shares ({1,2} and {2,3}) recombine to the same
// plaintext, not just the first w in id order.
func TestThresholdPartialDecryptL1DistinctSubsets(t *testing.T) {
	pub, shares, err := paillier.GenerateThresholdKeyPairs(context.Background(), 256, 3, 2)
	if err != nil {
		t.Fatalf("GenerateThresholdKeyPairs() unexpected error = %v", err)
	}
	b := big.NewInt(100)
	r := randomnessFor(t, &pub.PublicKey)
	c, err := Encrypt1(&pub.PublicKey, big.NewInt(142), b, r)
	if err != nil {
		t.Fatalf("Encrypt1() unexpected error = %v", err)
	}

	first, err := CombineL1(pub, []*L1PartialDecryption{
		PartialDecryptL1(shares[0], c),
		PartialDecryptL1(shares[1], c),
	})
	if err != nil {
		t.Fatalf("CombineL1() unexpected error for shares {1,2} = %v", err)
	}
	second, err := CombineL1(pub, []*L1PartialDecryption{
		PartialDecryptL1(shares[1], c),
		PartialDecryptL1(shares[2], c),
	})
	if err != nil {
		t.Fatalf("CombineL1() unexpected error for shares {2,3} = %v", err)
	}
	if first.Cmp(second) != 0 {
		t.Errorf("CombineL1() disagrees across subsets: shares{1,2} = %v, shares{2,3} = %v", first, second)
	}
	if first.Cmp(big.NewInt(142)) != 0 {
		t.Errorf("CombineL1() = %v, want 142", first)
	}
}

func TestThresholdPartialDecryptL2(t *testing.T) {
	pub, shares, err := paillier.GenerateThresholdKeyPairs(context.Background(), 256, 3, 2)
	if err != nil {
		t.Fatalf("GenerateThresholdKeyPairs() unexpected error = %v", err)
	}
	c1, err := Encrypt1(&pub.PublicKey, big.NewInt(6), big.NewInt(1), randomnessFor(t, &pub.PublicKey))
	if err != nil {
		t.Fatalf("Encrypt1() unexpected error = %v", err)
	}
	c2, err := Encrypt1(&pub.PublicKey, big.NewInt(7), big.NewInt(2), randomnessFor(t, &pub.PublicKey))
	if err != nil {
		t.Fatalf("Encrypt1() unexpected error = %v", err)
	}
	prod, err := Mult(&pub.PublicKey, c1, c2)
	if err != nil {
		t.Fatalf("Mult() unexpected error = %v", err)
	}

	parts := make([]*L2PartialDecryption, pub.W)
	for i := 0; i < pub.W; i++ {
		parts[i] = PartialDecryptL2(shares[i], prod)
	}
	got, err := CombineL2(pub, parts)
	if err != nil {
		t.Fatalf("CombineL2() unexpected error = %v", err)
	}
	if got.Cmp(big.NewInt(42)) != 0 {
		t.Errorf("CombineL2() = %v, want 42", got)
	}
}

// TestThresholdPartialDecryptL2DistinctSubsets mirrors
// TestThresholdPartialDecryptL1DistinctSubsets at the L2 level: shares {1,2}
// and {2,3} must recombine to the same plaintext.
func TestThresholdPartialDecryptL2DistinctSubsets(t *testing.T) {
	pub, shares, err := paillier.GenerateThresholdKeyPairs(context.Background(), 256, 3, 2)
	if err != nil {
		t.Fatalf("GenerateThresholdKeyPairs() unexpected error = %v", err)
	}
	c1, err := Encrypt1(&pub.PublicKey, big.NewInt(6), big.NewInt(1), randomnessFor(t, &pub.PublicKey))
	if err != nil {
		t.Fatalf("Encrypt1() unexpected error = %v", err)
	}
	c2, err := Encrypt1(&pub.PublicKey, big.NewInt(7), big.NewInt(2), randomnessFor(t, &pub.PublicKey))
	if err != nil {
		t.Fatalf("Encrypt1() unexpected error = %v", err)
	}
	prod, err := Mult(&pub.PublicKey, c1, c2)
	if err != nil {
		t.Fatalf("Mult() unexpected error = %v", err)
	}

	first, err := CombineL2(pub, []*L2PartialDecryption{
		PartialDecryptL2(shares[0], prod),
		PartialDecryptL2(shares[1], prod),
	})
	if err != nil {
		t.Fatalf("CombineL2() unexpected error for shares {1,2} = %v", err)
	}
	second, err := CombineL2(pub, []*L2PartialDecryption{
		PartialDecryptL2(shares[1], prod),
		PartialDecryptL2(shares[2], prod),
	})
	if err != nil {
		t.Fatalf("CombineL2() unexpected error for shares {2,3} = %v", err)
	}
	if first.Cmp(second) != 0 {
		t.Errorf("CombineL2() disagrees across subsets: shares{1,2} = %v, shares{2,3} = %v", first, second)
	}
	if first.Cmp(big.NewInt(42)) != 0 {
		t.Errorf("CombineL2() = %v, want 42", first)
	}
}
