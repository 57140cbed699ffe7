package core

import "encoding/binary"

// Key prefixes. Every module owns a disjoint set of prefixes; no two
// modules may share one (spec §3, §9 "key encoding").
const (
	prefixBankBalance     = "bank:balance:"
	prefixBankNonce       = "bank:nonce:"
	prefixAvatarsArchon   = "avatars:archon:"
	prefixAeonProfile     = "aeon/profile:"
	prefixNftToken        = "nft:token:"
	keyNftCounter         = "nft:counter"
	prefixNftOwner        = "nft:owner:"
	keyGenesisInitialized = "demiurge/genesis_initialized"
	prefixFabricAsset     = "fabric:asset:"
	prefixAbyssListing    = "abyss:listing:"
	keyAbyssCounter       = "abyss:counter"
)

func bankBalanceKey(addr Address) []byte {
	return append([]byte(prefixBankBalance), addr[:]...)
}

func bankNonceKey(addr Address) []byte {
	return append([]byte(prefixBankNonce), addr[:]...)
}

func archonKey(addr Address) []byte {
	return append([]byte(prefixAvatarsArchon), addr[:]...)
}

func aeonProfileKey(addr Address) []byte {
	return append([]byte(prefixAeonProfile), addr[:]...)
}

// nftIDBytes encodes a token id as big-endian so that lexicographic key
// order matches numeric order (spec §9: "big-endian for integers where
// ordered iteration matters").
func nftIDBytes(id uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], id)
	return b[:]
}

func nftTokenKey(id uint64) []byte {
	return append([]byte(prefixNftToken), nftIDBytes(id)...)
}

func nftOwnerKey(addr Address) []byte {
	return append([]byte(prefixNftOwner), addr[:]...)
}

func fabricAssetKey(rootHash [32]byte) []byte {
	return append([]byte(prefixFabricAsset), rootHash[:]...)
}

func abyssListingKey(id uint64) []byte {
	return append([]byte(prefixAbyssListing), nftIDBytes(id)...)
}
