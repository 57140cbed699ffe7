package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMintDgenWithoutArchonScenarioS2(t *testing.T) {
	s := newTestState()
	rt := NewDefaultRuntime()

	payload := &MintDgenPayload{FabricRootHash: [32]byte{42}}
	tx := &Transaction{From: addrN(1), ModuleID: "nft_dgen", CallID: "mint_dgen", Payload: payload.EncodePayload()}
	err := rt.DispatchTx(tx, s)
	require.ErrorContains(t, err, "NotArchon")
}

func TestClaimMintTransferScenarioS3(t *testing.T) {
	s := newTestState()
	rt := NewDefaultRuntime()

	claimTx := &Transaction{From: addrN(1), ModuleID: "avatars_profiles", CallID: "claim_archon"}
	require.NoError(t, rt.DispatchTx(claimTx, s))

	mintPayload := &MintDgenPayload{FabricRootHash: [32]byte{42}}
	mintTx := &Transaction{From: addrN(1), ModuleID: "nft_dgen", CallID: "mint_dgen", Payload: mintPayload.EncodePayload()}
	require.NoError(t, rt.DispatchTx(mintTx, s))

	meta, err := GetDGenMetadata(s, 0)
	require.NoError(t, err)
	require.NotNil(t, meta)
	require.Equal(t, addrN(1), meta.Owner)

	transferPayload := &TransferNftPayload{TokenID: 0, To: addrN(2)}
	transferTx := &Transaction{From: addrN(1), ModuleID: "nft_dgen", CallID: "transfer_nft", Payload: transferPayload.EncodePayload()}
	require.NoError(t, rt.DispatchTx(transferTx, s))

	meta, err = GetDGenMetadata(s, 0)
	require.NoError(t, err)
	require.Equal(t, addrN(2), meta.Owner)
	require.Equal(t, addrN(1), meta.Creator)

	ownerOneIDs, err := GetOwnerNfts(s, addrN(1))
	require.NoError(t, err)
	require.Empty(t, ownerOneIDs)

	ownerTwoIDs, err := GetOwnerNfts(s, addrN(2))
	require.NoError(t, err)
	require.Equal(t, []uint64{0}, ownerTwoIDs)
}

func TestNftUniquenessAndOwnerIndexProperties(t *testing.T) {
	s := newTestState()
	rt := NewDefaultRuntime()

	claimTx := &Transaction{From: addrN(1), ModuleID: "avatars_profiles", CallID: "claim_archon"}
	require.NoError(t, rt.DispatchTx(claimTx, s))

	const n = 5
	for i := 0; i < n; i++ {
		payload := &MintDgenPayload{FabricRootHash: [32]byte{byte(i)}}
		tx := &Transaction{From: addrN(1), ModuleID: "nft_dgen", CallID: "mint_dgen", Payload: payload.EncodePayload()}
		require.NoError(t, rt.DispatchTx(tx, s))
	}

	counter, err := GetNftCounter(s)
	require.NoError(t, err)
	require.Equal(t, uint64(n), counter)

	for i := uint64(0); i < n; i++ {
		meta, err := GetDGenMetadata(s, i)
		require.NoError(t, err)
		require.NotNil(t, meta)
		ids, err := GetOwnerNfts(s, meta.Owner)
		require.NoError(t, err)
		require.Contains(t, ids, i)
	}

	otherIDs, err := GetOwnerNfts(s, addrN(99))
	require.NoError(t, err)
	require.Empty(t, otherIDs)
}

func TestTransferNftNotOwner(t *testing.T) {
	s := newTestState()
	rt := NewDefaultRuntime()

	claimTx := &Transaction{From: addrN(1), ModuleID: "avatars_profiles", CallID: "claim_archon"}
	require.NoError(t, rt.DispatchTx(claimTx, s))
	mintPayload := &MintDgenPayload{FabricRootHash: [32]byte{1}}
	mintTx := &Transaction{From: addrN(1), ModuleID: "nft_dgen", CallID: "mint_dgen", Payload: mintPayload.EncodePayload()}
	require.NoError(t, rt.DispatchTx(mintTx, s))

	transferPayload := &TransferNftPayload{TokenID: 0, To: addrN(3)}
	transferTx := &Transaction{From: addrN(2), ModuleID: "nft_dgen", CallID: "transfer_nft", Payload: transferPayload.EncodePayload()}
	err := rt.DispatchTx(transferTx, s)
	require.ErrorContains(t, err, "NotOwner")
}

func TestTransferNftNotFound(t *testing.T) {
	s := newTestState()
	rt := NewDefaultRuntime()

	transferPayload := &TransferNftPayload{TokenID: 77, To: addrN(3)}
	transferTx := &Transaction{From: addrN(2), ModuleID: "nft_dgen", CallID: "transfer_nft", Payload: transferPayload.EncodePayload()}
	err := rt.DispatchTx(transferTx, s)
	require.ErrorContains(t, err, "NftNotFound")
}
