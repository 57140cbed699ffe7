//go:build devfaucet

package core

// Faucet mints DevFaucetAmount to `to` with no authority check. Present only
// in development builds (spec §6: "Dev-only faucet amount (build-flag
// gated): 10_000"), mirroring the teacher's own use of build tags to gate
// optional, non-consensus-critical surfaces (see tx_types.go's `tokens` tag).
func Faucet(s *State, to Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bal, err := s.getUint64Locked(bankBalanceKey(to))
	if err != nil {
		return err
	}
	newBal := bal + DevFaucetAmount
	if newBal < bal {
		return ErrOverflow
	}
	return s.putUint64Locked(bankBalanceKey(to), newBal)
}
