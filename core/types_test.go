package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransactionEncodeDecodeRoundTrip(t *testing.T) {
	cases := []*Transaction{
		{
			From:      Address{1, 2, 3},
			Nonce:     42,
			ModuleID:  "bank_cgt",
			CallID:    "transfer",
			Payload:   []byte{0xAA, 0xBB, 0xCC},
			Fee:       7,
			Signature: []byte{0x01, 0x02},
		},
		{
			From:     GenesisAuthority,
			ModuleID: "bank_cgt",
			CallID:   "mint_to",
		},
	}

	for _, tx := range cases {
		encoded := tx.Encode()
		decoded, err := DecodeTransaction(encoded)
		require.NoError(t, err)
		require.Equal(t, tx.From, decoded.From)
		require.Equal(t, tx.Nonce, decoded.Nonce)
		require.Equal(t, tx.ModuleID, decoded.ModuleID)
		require.Equal(t, tx.CallID, decoded.CallID)
		require.Equal(t, tx.Payload, decoded.Payload)
		require.Equal(t, tx.Fee, decoded.Fee)
		require.Equal(t, tx.Signature, decoded.Signature)
	}
}

func TestBlockHeaderPreimageExcludesNonce(t *testing.T) {
	h1 := BlockHeader{Height: 5, Timestamp: 100, Nonce: 1}
	h2 := h1
	h2.Nonce = 999

	require.Equal(t, h1.SerializeWithoutNonce(), h2.SerializeWithoutNonce())
	require.NotEqual(t, h1.Serialize(), h2.Serialize())
}
