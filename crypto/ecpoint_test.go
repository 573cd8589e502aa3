// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package crypto

import (
	"math/big"
	"testing"
)

func TestNewECPoint(t *testing.T) {
	curve := EC()
	g := ScalarBaseMult(curve, big.NewInt(1))
	if _, err := NewECPoint(curve, g.X(), g.Y()); err != nil {
		t.Errorf("NewECPoint() unexpected error = %v", err)
	}
	if _, err := NewECPoint(curve, big.NewInt(1), big.NewInt(1)); err == nil {
		t.Error("NewECPoint() expected an error for an off-curve point")
	}
}

func TestECPointAddSubNeg(t *testing.T) {
	curve := EC()
	g := ScalarBaseMult(curve, big.NewInt(1))
	g2 := ScalarBaseMult(curve, big.NewInt(2))

	sum, err := g.Add(g)
	if err != nil {
		t.Fatalf("Add() unexpected error = %v", err)
	}
	if !sum.Equals(g2) {
		t.Error("Add() g+g != 2g")
	}

	diff, err := sum.Sub(g)
	if err != nil {
		t.Fatalf("Sub() unexpected error = %v", err)
	}
	if !diff.Equals(g) {
		t.Error("Sub() (g+g)-g != g")
	}

	// g+(-g) is the point at infinity, which has no on-curve affine
	// representation, so Add reports it as an error.
	negSum, err := g.Add(g.Neg())
	if err == nil {
		t.Fatalf("Add() g+(-g) = %v, want an error for the point at infinity", negSum)
	}
	if negSum != nil {
		t.Error("Add() g+(-g) returned a point alongside its error")
	}
}

func TestECPointScalarMult(t *testing.T) {
	curve := EC()
	g := ScalarBaseMult(curve, big.NewInt(1))
	five := ScalarBaseMult(curve, big.NewInt(5))
	if !g.ScalarMult(big.NewInt(5)).Equals(five) {
		t.Error("ScalarMult() 5*g != ScalarBaseMult(5)")
	}
}

func TestFlattenUnFlattenECPoints(t *testing.T) {
	curve := EC()
	pts := []*ECPoint{
		ScalarBaseMult(curve, big.NewInt(1)),
		ScalarBaseMult(curve, big.NewInt(2)),
		ScalarBaseMult(curve, big.NewInt(3)),
	}
	flat, err := FlattenECPoints(pts)
	if err != nil {
		t.Fatalf("FlattenECPoints() unexpected error = %v", err)
	}
	if len(flat) != 2*len(pts) {
		t.Fatalf("FlattenECPoints() len = %d, want %d", len(flat), 2*len(pts))
	}
	unFlat, err := UnFlattenECPoints(curve, flat)
	if err != nil {
		t.Fatalf("UnFlattenECPoints() unexpected error = %v", err)
	}
	for i, p := range pts {
		if !p.Equals(unFlat[i]) {
			t.Errorf("UnFlattenECPoints()[%d] = %v, want %v", i, unFlat[i], p)
		}
	}
}

func TestECPointMarshalJSON(t *testing.T) {
	curve := EC()
	g := ScalarBaseMult(curve, big.NewInt(7))
	bz, err := g.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() unexpected error = %v", err)
	}
	var g2 ECPoint
	if err := g2.UnmarshalJSON(bz); err != nil {
		t.Fatalf("UnmarshalJSON() unexpected error = %v", err)
	}
	if !g.Equals(&g2) {
		t.Error("UnmarshalJSON() round trip did not reproduce the original point")
	}
}
