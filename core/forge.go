package core

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
)

// ForgeHash is the deterministic PoW digest: Keccak256 over the nonce-less
// header serialization concatenated with the nonce as its own 8-byte
// little-endian integer (spec §6: "Block header PoW preimage").
//
// Keccak256 is used rather than a hand-rolled digest because it is already a
// dependency of this corpus (go-ethereum) and is the primitive the pack's
// chains reach for when they need a fixed, preimage-resistant hash.
func ForgeHash(headerWithoutNonce []byte, nonce uint64) [32]byte {
	var nonceBuf [8]byte
	binary.LittleEndian.PutUint64(nonceBuf[:], nonce)
	input := make([]byte, 0, len(headerWithoutNonce)+8)
	input = append(input, headerWithoutNonce...)
	input = append(input, nonceBuf[:]...)
	return crypto.Keccak256Hash(input)
}

// MeetsDifficulty interprets hash's leading 16 bytes as a big-endian u128
// and returns true iff it is <= target. Higher target is easier;
// MaxUint128 always passes.
func MeetsDifficulty(hash [32]byte, target Uint128) bool {
	h := new(big.Int).SetBytes(hash[:16])
	t := new(big.Int).SetBytes(target[:])
	return h.Cmp(t) <= 0
}
