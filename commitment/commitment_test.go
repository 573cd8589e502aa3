package commitment

import (
	"crypto/rand"
	"math/big"
	"testing"
)

func TestCommitVerifyRoundTrip(t *testing.T) {
	mpk, err := GenerateMasterPublicKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateMasterPublicKey() unexpected error = %v", err)
	}
	secrets := []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)}

	cmt, open, err := Commit(mpk, secrets...)
	if err != nil {
		t.Fatalf("Commit() unexpected error = %v", err)
	}
	if !Verify(mpk, cmt, open) {
		t.Error("Verify() = false for an honest commitment, want true")
	}
}

func TestVerifyRejectsWrongSecrets(t *testing.T) {
	mpk, _ := GenerateMasterPublicKey(rand.Reader)
	cmt, open, err := Commit(mpk, big.NewInt(1), big.NewInt(2))
	if err != nil {
		t.Fatalf("Commit() unexpected error = %v", err)
	}
	tampered := &Opening{R: open.R, Secrets: []*big.Int{big.NewInt(1), big.NewInt(99)}}
	if Verify(mpk, cmt, tampered) {
		t.Error("Verify() = true for tampered secrets, want false")
	}
}

func TestVerifyRejectsWrongOpening(t *testing.T) {
	mpk, _ := GenerateMasterPublicKey(rand.Reader)
	cmt, open, err := Commit(mpk, big.NewInt(5))
	if err != nil {
		t.Fatalf("Commit() unexpected error = %v", err)
	}
	tampered := &Opening{R: new(big.Int).Add(open.R, big.NewInt(1)), Secrets: open.Secrets}
	if Verify(mpk, cmt, tampered) {
		t.Error("Verify() = true for a tampered opening randomness, want false")
	}
}

// safePrime1024 is a known 1024-bit safe prime (p = 2q+1), used so the
// Pedersen tests don't need to search for one.
var safePrime1024, _ = new(big.Int).SetString(
	"179769313486231590770839156793787453197860296048756011706444423684197180216158519368947833795864925541502180565485980503646440548199239100050792877003355816639229553136239076508735759914822574862575007425302077447712589550957937778424442426617334727629299387668709205606050270810842907692932019128194467627007", 10)

func TestPedersenCommitVerify(t *testing.T) {
	g := big.NewInt(4) // a generator of the order-q subgroup for this prime
	pp, err := NewPedersenParams(safePrime1024, g)
	if err != nil {
		t.Fatalf("NewPedersenParams() unexpected error = %v", err)
	}
	m := big.NewInt(42)
	c, r, err := pp.Commit(m)
	if err != nil {
		t.Fatalf("Commit() unexpected error = %v", err)
	}
	if !pp.VerifyCommit(c, m, r) {
		t.Error("VerifyCommit() = false for an honest commitment, want true")
	}
}

func TestPedersenVerifyRejectsWrongMessage(t *testing.T) {
	g := big.NewInt(4)
	pp, err := NewPedersenParams(safePrime1024, g)
	if err != nil {
		t.Fatalf("NewPedersenParams() unexpected error = %v", err)
	}
	m := big.NewInt(7)
	c, r, _ := pp.Commit(m)
	if pp.VerifyCommit(c, big.NewInt(8), r) {
		t.Error("VerifyCommit() = true for the wrong message, want false")
	}
}
