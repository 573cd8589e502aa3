package common

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"
)

// ErrEncodingOverflow is returned when a length field would exceed the
// 32-bit index domain used by the codec (spec §4.1/§6).
var ErrEncodingOverflow = errors.New("EncodingOverflow: encoded length exceeds the uint32 index domain")

// ErrCorruptEncoding is returned when a length-prefixed slice would extend
// past the remaining buffer while decoding (spec §6).
var ErrCorruptEncoding = errors.New("CorruptEncoding: length-prefixed field extends past the buffer")

// PutBigInt appends a [len:4‖bytes] entry for n to buf, per spec §4.1's
// byte codec. Ported from common/slice.go's BigIntsToBytes
// idiom, generalized to the length-prefixed wire format spec.md §6 names
// explicitly (that idiom serializes fixed-arity proofs as bare
// [][]byte and lets the caller track lengths out of band; this codec
// embeds the length so a single buffer round-trips self-describingly).
func PutBigInt(buf []byte, n *big.Int) ([]byte, error) {
	bz := n.Bytes()
	if uint64(len(bz)) > 0xFFFFFFFF {
		return nil, ErrEncodingOverflow
	}
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(bz)))
	buf = append(buf, lenBuf...)
	buf = append(buf, bz...)
	return buf, nil
}

// GetBigInt reads a [len:4‖bytes] entry from buf starting at offset,
// returning the decoded integer and the offset of the next entry.
func GetBigInt(buf []byte, offset int) (*big.Int, int, error) {
	if offset+4 > len(buf) {
		return nil, 0, ErrCorruptEncoding
	}
	length := int(binary.BigEndian.Uint32(buf[offset : offset+4]))
	offset += 4
	if length < 0 || offset+length > len(buf) {
		return nil, 0, ErrCorruptEncoding
	}
	n := new(big.Int).SetBytes(buf[offset : offset+length])
	return n, offset + length, nil
}

// EncodeBigIntArray encodes a slice of *big.Int as the concatenation of
// their [len:4‖bytes] entries (spec §4.1).
func EncodeBigIntArray(ns []*big.Int) ([]byte, error) {
	var buf []byte
	var err error
	for _, n := range ns {
		buf, err = PutBigInt(buf, n)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// DecodeBigIntArray decodes a buffer produced by EncodeBigIntArray,
// reading exactly `count` entries.
func DecodeBigIntArray(buf []byte, count int) ([]*big.Int, error) {
	out := make([]*big.Int, count)
	offset := 0
	var err error
	for i := 0; i < count; i++ {
		out[i], offset, err = GetBigInt(buf, offset)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// PutLayer wraps a fully-encoded inner layer with a trailing 4-byte
// length, so a parser can peel the outermost layer first by reading the
// trailing bytes and slicing the inner buffer out, as spec §6 describes
// for the key `toByteArray` form.
func PutLayer(inner []byte) ([]byte, error) {
	if uint64(len(inner)) > 0xFFFFFFFF {
		return nil, ErrEncodingOverflow
	}
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(inner)))
	return append(append([]byte{}, inner...), lenBuf...), nil
}

// PeelLayer reads the trailing 4-byte length of buf and returns the inner
// layer's bytes (buf with the trailing length stripped, truncated to the
// declared inner length).
func PeelLayer(buf []byte) ([]byte, error) {
	if len(buf) < 4 {
		return nil, ErrCorruptEncoding
	}
	innerLen := int(binary.BigEndian.Uint32(buf[len(buf)-4:]))
	if innerLen < 0 || innerLen > len(buf)-4 {
		return nil, ErrCorruptEncoding
	}
	return buf[:innerLen], nil
}

// DecodePartyIndex reconstructs a partial-decryption server index from its
// four-byte unsigned big-endian encoding. spec.md §9 flags that the
// original Java source's operator precedence corrupts this reconstruction;
// the canonical decoding masks each byte to its unsigned form before
// shifting, as specified.
func DecodePartyIndex(b []byte) int {
	return int(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
}

// EncodePartyIndex is the inverse of DecodePartyIndex.
func EncodePartyIndex(id int) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(id))
	return b
}
