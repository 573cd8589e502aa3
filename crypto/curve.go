// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package crypto

import (
	"crypto/elliptic"

	s256k1 "github.com/btcsuite/btcd/btcec/v2"
)

// S256 returns the secp256k1 curve, the only curve this module signs over.
func S256() elliptic.Curve {
	return s256k1.S256()
}

// EC returns the curve ECPoint falls back to when one isn't supplied
// explicitly, such as during JSON unmarshaling.
func EC() elliptic.Curve {
	return s256k1.S256()
}
