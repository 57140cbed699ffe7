package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestState() *State {
	return NewState(NewMemBackend(), nil)
}

func addrN(n byte) Address {
	var a Address
	for i := range a {
		a[i] = n
	}
	return a
}

func TestMintToRequiresGenesisAuthority(t *testing.T) {
	s := newTestState()
	rt := NewDefaultRuntime()

	payload := &MintToPayload{To: addrN(1), Amount: 100}
	tx := &Transaction{From: addrN(9), ModuleID: "bank_cgt", CallID: "mint_to", Payload: payload.EncodePayload()}
	err := rt.DispatchTx(tx, s)
	require.ErrorContains(t, err, "NotGenesisAuthority")

	bal, err := GetBalance(s, addrN(1))
	require.NoError(t, err)
	require.Zero(t, bal)
}

func TestMintThenTransferScenarioS1(t *testing.T) {
	s := newTestState()
	rt := NewDefaultRuntime()

	mint := &MintToPayload{To: addrN(1), Amount: 1000}
	tx1 := &Transaction{From: GenesisAuthority, ModuleID: "bank_cgt", CallID: "mint_to", Payload: mint.EncodePayload()}
	require.NoError(t, rt.DispatchTx(tx1, s))

	transfer := &TransferPayload{To: addrN(2), Amount: 300}
	tx2 := &Transaction{From: addrN(1), Nonce: 0, ModuleID: "bank_cgt", CallID: "transfer", Payload: transfer.EncodePayload(), Fee: 10}
	require.NoError(t, rt.DispatchTx(tx2, s))

	bal1, err := GetBalance(s, addrN(1))
	require.NoError(t, err)
	require.Equal(t, uint64(690), bal1)

	bal2, err := GetBalance(s, addrN(2))
	require.NoError(t, err)
	require.Equal(t, uint64(300), bal2)

	nonce1, err := GetNonce(s, addrN(1))
	require.NoError(t, err)
	require.Equal(t, uint64(1), nonce1)
}

func TestNonceMismatchScenarioS6(t *testing.T) {
	s := newTestState()
	rt := NewDefaultRuntime()

	mint := &MintToPayload{To: addrN(1), Amount: 1000}
	tx1 := &Transaction{From: GenesisAuthority, ModuleID: "bank_cgt", CallID: "mint_to", Payload: mint.EncodePayload()}
	require.NoError(t, rt.DispatchTx(tx1, s))

	transfer := &TransferPayload{To: addrN(2), Amount: 300}
	tx2 := &Transaction{From: addrN(1), Nonce: 5, ModuleID: "bank_cgt", CallID: "transfer", Payload: transfer.EncodePayload()}
	err := rt.DispatchTx(tx2, s)
	require.ErrorContains(t, err, "InvalidNonce{expected=0, got=5}")

	bal1, err := GetBalance(s, addrN(1))
	require.NoError(t, err)
	require.Equal(t, uint64(1000), bal1)
}

func TestTransferInsufficientBalance(t *testing.T) {
	s := newTestState()
	rt := NewDefaultRuntime()

	transfer := &TransferPayload{To: addrN(2), Amount: 5}
	tx := &Transaction{From: addrN(1), ModuleID: "bank_cgt", CallID: "transfer", Payload: transfer.EncodePayload()}
	err := rt.DispatchTx(tx, s)
	require.ErrorContains(t, err, "InsufficientBalance")
}

func TestSelfTransferPreservesBalanceMinusFee(t *testing.T) {
	s := newTestState()
	rt := NewDefaultRuntime()

	mint := &MintToPayload{To: addrN(1), Amount: 1000}
	tx1 := &Transaction{From: GenesisAuthority, ModuleID: "bank_cgt", CallID: "mint_to", Payload: mint.EncodePayload()}
	require.NoError(t, rt.DispatchTx(tx1, s))

	transfer := &TransferPayload{To: addrN(1), Amount: 200}
	tx2 := &Transaction{From: addrN(1), ModuleID: "bank_cgt", CallID: "transfer", Payload: transfer.EncodePayload(), Fee: 15}
	require.NoError(t, rt.DispatchTx(tx2, s))

	bal, err := GetBalance(s, addrN(1))
	require.NoError(t, err)
	require.Equal(t, uint64(985), bal)
}

func TestDispatchUnknownModuleLeavesStateUnchanged(t *testing.T) {
	s := newTestState()
	rt := NewDefaultRuntime()

	tx := &Transaction{From: addrN(1), ModuleID: "does_not_exist", CallID: "noop"}
	err := rt.DispatchTx(tx, s)
	require.ErrorContains(t, err, "UnknownModule(does_not_exist)")

	root1, err := s.StateRoot()
	require.NoError(t, err)

	// Dispatching again should leave the (empty) state identically rooted.
	err = rt.DispatchTx(tx, s)
	require.Error(t, err)
	root2, err := s.StateRoot()
	require.NoError(t, err)
	require.Equal(t, root1, root2)
}
