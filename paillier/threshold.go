package paillier

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/citp/ThresholdECDSA/common"
)

type (
	// ThresholdPublicKey is the public key for an (l, w) threshold Paillier
	// scheme: l decryption servers, any w of which can jointly decrypt.
	// Ported from didiercrunch/paillier's ThresholdKey.
	//
	// V is a generator of the cyclic group of squares in Z_{N^2}, and Vi[i]
	// is the verification key for decryption server i, both used for the
	// zero-knowledge proof of a correct partial decryption.
	ThresholdPublicKey struct {
		PublicKey
		L  int // total number of decryption servers
		W  int // reconstruction threshold
		V  *big.Int
		Vi []*big.Int
	}

	// ThresholdPrivateShare is one decryption server's share of the
	// threshold private key: its index and its Shamir share of d.
	ThresholdPrivateShare struct {
		ThresholdPublicKey
		Id    int
		Share *big.Int
	}

	// PartialDecryption is one decryption server's contribution toward
	// recovering a plaintext, c_i = c^(2*delta*s_i) mod N^2.
	PartialDecryption struct {
		Id         int
		Decryption *big.Int
	}
)

// Delta returns l!, a fixed constant of the threshold key used throughout
// share combining and partial-decryption proofs to clear denominators in
// the Lagrange coefficients.
func (tpk *ThresholdPublicKey) Delta() *big.Int {
	return common.Factorial(tpk.L)
}

func (tpk *ThresholdPublicKey) delta() *big.Int {
	return tpk.Delta()
}

// combineSharesConstant returns (4*delta^2)^-1 mod N, the fixed multiplier
// applied to L(c') in the last step of CombinePartialDecryptions.
func (tpk *ThresholdPublicKey) combineSharesConstant() *big.Int {
	deltaSq := new(big.Int).Mul(tpk.delta(), tpk.delta())
	fourDeltaSq := new(big.Int).Mul(four, deltaSq)
	return new(big.Int).ModInverse(fourDeltaSq, tpk.N)
}

// GenerateThresholdKeyPairs runs the [DJN 10] section 5.1 dealer-based key
// generation: sample two safe prime pairs, form n = p*q and m = p'*q',
// solve d = 1 mod n, d = 0 mod m via CRT, then Shamir-share d over Z_{n*m}
// with a degree-(w-1) polynomial. Ported from didiercrunch/paillier's
// ThresholdKeyGenerator.
func GenerateThresholdKeyPairs(ctx context.Context, modulusBitLen, l, w int, optionalConcurrency ...int) (*ThresholdPublicKey, []*ThresholdPrivateShare, error) {
	concurrency := 4
	if len(optionalConcurrency) > 0 {
		concurrency = optionalConcurrency[0]
	}

	var p, q, p1, q1, n, m, nSquare *big.Int
	for {
		sgps, err := common.GetRandomSafePrimesConcurrent(ctx, modulusBitLen/2, 2, concurrency)
		if err != nil {
			return nil, nil, err
		}
		p, p1 = sgps[0].SafePrime(), sgps[0].Prime()
		q, q1 = sgps[1].SafePrime(), sgps[1].Prime()
		if p.Cmp(q) == 0 || p.Cmp(q1) == 0 || p1.Cmp(q) == 0 {
			continue
		}
		break
	}
	n = new(big.Int).Mul(p, q)
	m = new(big.Int).Mul(p1, q1)
	nSquare = new(big.Int).Mul(n, n)
	nm := new(big.Int).Mul(n, m)

	// d = 1 mod n, d = 0 mod m, via CRT: d = m * (m^-1 mod n)
	mInverse := new(big.Int).ModInverse(m, n)
	d := new(big.Int).Mul(mInverse, m)

	v := common.GetRandomGeneratorOfTheQuadraticResidue(nSquare)

	// f(X) = d + a_1*X + ... + a_(w-1)*X^(w-1), coefficients in Z_{nm}.
	coeffs := make([]*big.Int, w)
	coeffs[0] = d
	for i := 1; i < w; i++ {
		a, err := rand.Int(rand.Reader, nm)
		if err != nil {
			return nil, nil, err
		}
		coeffs[i] = a
	}

	shares := make([]*big.Int, l)
	for i := 0; i < l; i++ {
		share := big.NewInt(0)
		for j := 0; j < w; j++ {
			term := new(big.Int).Exp(big.NewInt(int64(i+1)), big.NewInt(int64(j)), nil)
			term.Mul(term, coeffs[j])
			share.Add(share, term)
		}
		shares[i] = share.Mod(share, nm)
	}

	delta := common.Factorial(l)
	vi := make([]*big.Int, l)
	for i, share := range shares {
		exp := new(big.Int).Mul(share, delta)
		vi[i] = new(big.Int).Exp(v, exp, nSquare)
	}

	pub := ThresholdPublicKey{
		PublicKey: PublicKey{N: n},
		L:         l,
		W:         w,
		V:         v,
		Vi:        vi,
	}

	privs := make([]*ThresholdPrivateShare, l)
	for i := range shares {
		privs[i] = &ThresholdPrivateShare{
			ThresholdPublicKey: pub,
			Id:                 i + 1,
			Share:              shares[i],
		}
	}
	return &pub, privs, nil
}

// Decrypt computes this server's partial decryption c_i = c^(2*delta*s_i) mod N^2.
func (share *ThresholdPrivateShare) Decrypt(c *big.Int) *PartialDecryption {
	exp := new(big.Int).Mul(share.Share, new(big.Int).Mul(two, share.delta()))
	return &PartialDecryption{
		Id:         share.Id,
		Decryption: new(big.Int).Exp(c, exp, share.NSquare()),
	}
}

func verifyNoDuplicateShares(shares []*PartialDecryption, threshold int) error {
	if len(shares) < threshold {
		return ErrInsufficientShares
	}
	seen := make(map[int]bool, len(shares))
	for _, share := range shares {
		if seen[share.Id] {
			return ErrDuplicateShare
		}
		seen[share.Id] = true
	}
	return nil
}

// lagrangeNumeratorAt0 returns delta * prod_{j != share.Id}(-j) / (share.Id - j),
// the Lagrange coefficient for share.Id evaluated at x=0, scaled by delta so
// the running product stays an integer throughout (delta = l! clears every
// denominator since all (share.Id - j) divide l!).
func lagrangeNumeratorAt0(delta *big.Int, share *PartialDecryption, shares []*PartialDecryption) *big.Int {
	lambda := new(big.Int).Set(delta)
	for _, other := range shares {
		if other.Id == share.Id {
			continue
		}
		num := new(big.Int).Mul(lambda, big.NewInt(int64(-other.Id)))
		denom := big.NewInt(int64(share.Id - other.Id))
		lambda = new(big.Int).Div(num, denom)
	}
	return lambda
}

// CombinePartialDecryptions reconstructs the plaintext from at least w
// partial decryptions, using the Lagrange-coefficient share combining of
// [DJN 10] section 5.2. Does not verify any DecryptionZKP attached to the
// shares; callers that received shares from untrusted servers should verify
// each DecryptionZKP first and discard any that fail.
func (tpk *ThresholdPublicKey) CombinePartialDecryptions(shares []*PartialDecryption) (*big.Int, error) {
	if err := verifyNoDuplicateShares(shares, tpk.W); err != nil {
		return nil, err
	}
	n2 := tpk.NSquare()
	delta := tpk.delta()

	cPrime := big.NewInt(1)
	for _, share := range shares {
		lambda := lagrangeNumeratorAt0(delta, share, shares)
		twoLambda := new(big.Int).Mul(two, lambda)
		exp := modExpAllowNegative(share.Decryption, twoLambda, n2)
		cPrime = common.ModInt(n2).Mul(cPrime, exp)
	}

	l := L(cPrime, tpk.N)
	return common.ModInt(tpk.N).Mul(tpk.combineSharesConstant(), l), nil
}

func modExpAllowNegative(a, b, c *big.Int) *big.Int {
	if b.Sign() < 0 {
		inv := new(big.Int).Exp(a, new(big.Int).Neg(b), c)
		return new(big.Int).ModInverse(inv, c)
	}
	return new(big.Int).Exp(a, b, c)
}
