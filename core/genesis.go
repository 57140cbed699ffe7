package core

// RunGenesis bootstraps a fresh state, guarded by the
// demiurge/genesis_initialized key. It is a no-op if genesis has already
// run. Synthesizes two transactions and dispatches them through the normal
// Runtime — the genesis path is not a privileged bypass, so the resulting
// state transitions are identical to any other dispatch (spec §4.9).
func RunGenesis(s *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	already, err := s.getBoolLocked([]byte(keyGenesisInitialized))
	if err != nil {
		return err
	}
	if already {
		return nil
	}

	rt := NewDefaultRuntime()

	mint := &MintToPayload{To: GenesisIdentity, Amount: GenesisInitialBalance}
	mintTx := &Transaction{
		From:     GenesisAuthority,
		ModuleID: "bank_cgt",
		CallID:   "mint_to",
		Payload:  mint.EncodePayload(),
	}
	if err := rt.dispatchTxLocked(mintTx, s); err != nil {
		return err
	}

	claimTx := &Transaction{
		From:     GenesisIdentity,
		ModuleID: "avatars_profiles",
		CallID:   "claim_archon",
	}
	if err := rt.dispatchTxLocked(claimTx, s); err != nil {
		return err
	}

	return s.putBoolLocked([]byte(keyGenesisInitialized), true)
}
