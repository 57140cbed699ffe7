package core

// Module is implemented by each of the five domain modules. dispatch
// receives an exclusive reference to State for the duration of the call and
// must not retain it.
type Module interface {
	ModuleID() string
	Dispatch(callID string, tx *Transaction, s *State) error
}

// Runtime holds the registered modules and routes a transaction to the
// matching module/call by string id. The module set is closed and
// consensus-critical (spec §4.4, §9): lookup by id keeps the wire format
// stable even though storage here is a plain slice, searched linearly (five
// modules; no hash map needed).
type Runtime struct {
	modules []Module
}

// NewDefaultRuntime builds a Runtime with exactly the default module set:
// bank_cgt, avatars_profiles, nft_dgen, fabric_manager, abyss_registry.
// Registration order is irrelevant because lookup is by id.
func NewDefaultRuntime() *Runtime {
	return &Runtime{
		modules: []Module{
			&BankModule{},
			&AvatarsModule{},
			&NftModule{},
			&FabricModule{},
			&AbyssModule{},
		},
	}
}

// DispatchTx routes tx to the module whose id matches tx.ModuleID. Returns
// ErrUnknownModule if none match.
func (rt *Runtime) DispatchTx(tx *Transaction, s *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rt.dispatchTxLocked(tx, s)
}

// dispatchTxLocked assumes s.mu is already held for writing (used by
// ExecuteBlock, which holds the lock across the whole block).
func (rt *Runtime) dispatchTxLocked(tx *Transaction, s *State) error {
	for _, m := range rt.modules {
		if m.ModuleID() == tx.ModuleID {
			return m.Dispatch(tx.CallID, tx, s)
		}
	}
	return ErrUnknownModule(tx.ModuleID)
}
