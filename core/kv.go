package core

// Backend is the narrow contract every state storage engine must satisfy.
// There is deliberately no delete, no iteration, and no transaction support
// in the contract: the core never relies on more than get/put. GetRaw must
// return a freshly owned copy so callers can mutate it freely.
type Backend interface {
	GetRaw(key []byte) ([]byte, error)
	PutRaw(key, value []byte) error
}

// MemBackend is an in-memory map backend, used by tests and by any host that
// does not need persistence. It is not internally synchronized; callers
// serialize access (see State, which owns the single exclusive lock).
type MemBackend struct {
	data map[string][]byte
}

// NewMemBackend returns an empty in-memory backend.
func NewMemBackend() *MemBackend {
	return &MemBackend{data: make(map[string][]byte)}
}

func (m *MemBackend) GetRaw(key []byte) ([]byte, error) {
	v, ok := m.data[string(key)]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemBackend) PutRaw(key, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[string(key)] = cp
	return nil
}
