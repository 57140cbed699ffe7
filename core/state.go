package core

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// State owns a Backend and exposes raw KV plus ExecuteBlock. Modules receive
// an exclusive reference to State for the duration of a single dispatch and
// must not retain it beyond that call (spec §9).
//
// Concurrency: a single RWMutex guards the whole State. Readers (queries)
// take RLock; ExecuteBlock takes Lock for the duration of block application
// (spec §5).
type State struct {
	mu      sync.RWMutex
	backend Backend
	Logger  *logrus.Logger

	// trackedKeys lets StateRoot enumerate the keyspace without requiring
	// iteration support from the Backend contract itself (see DESIGN.md,
	// Open Question 3).
	trackedKeys map[string]struct{}

	// currentHeight is the height of the block currently being applied by
	// ExecuteBlock, guarded by mu the same way the rest of State is.
	// Modules reach into it directly (as they already reach into backend)
	// to stamp "recorded at height" fields on the data they create.
	// Dispatches made outside ExecuteBlock (genesis, a bare DispatchTx call)
	// see whatever height was last set, 0 on a fresh State.
	currentHeight uint64
}

// NewState wraps a Backend in a State. A nil logger falls back to a
// logrus.Logger configured the way the teacher configures its package
// logger (text formatter, Info level).
func NewState(backend Backend, logger *logrus.Logger) *State {
	if logger == nil {
		logger = logrus.New()
	}
	return &State{
		backend:     backend,
		Logger:      logger,
		trackedKeys: make(map[string]struct{}),
	}
}

// GetRaw reads a key. Absent keys return (nil, nil); callers apply
// domain-specific absent-value defaults (spec §3: "absent balance reads as
// 0", etc).
func (s *State) GetRaw(key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backend.GetRaw(key)
}

// PutRaw writes a key and records it for StateRoot enumeration.
func (s *State) PutRaw(key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putRawLocked(key, value)
}

func (s *State) putRawLocked(key, value []byte) error {
	if err := s.backend.PutRaw(key, value); err != nil {
		return err
	}
	s.trackedKeys[string(key)] = struct{}{}
	return nil
}

// getUint64Locked reads an 8-byte little-endian integer, defaulting to 0 when the
// key is absent.
func (s *State) getUint64Locked(key []byte) (uint64, error) {
	v, err := s.backend.GetRaw(key)
	if err != nil {
		return 0, errStorage("get %x: %w", key, err)
	}
	if v == nil {
		return 0, nil
	}
	if len(v) != 8 {
		return 0, errValidation("corrupt u64 at %x", key)
	}
	return binary.LittleEndian.Uint64(v), nil
}

func (s *State) putUint64Locked(key []byte, val uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], val)
	return s.putRawLocked(key, b[:])
}

func (s *State) getBoolLocked(key []byte) (bool, error) {
	v, err := s.backend.GetRaw(key)
	if err != nil {
		return false, errStorage("get %x: %w", key, err)
	}
	if v == nil {
		return false, nil
	}
	return len(v) > 0 && v[0] == 1, nil
}

func (s *State) putBoolLocked(key []byte, val bool) error {
	b := byte(0)
	if val {
		b = 1
	}
	return s.putRawLocked(key, []byte{b})
}

// StateRoot computes a deterministic SHA-256 digest over every key this
// State instance has written, sorted lexicographically. Grounded on the
// teacher's Ledger.StateRoot. Not consulted by ExecuteBlock (spec §9, Open
// Question 3: the header field exists but is unvalidated).
func (s *State) StateRoot() (Hash, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.trackedKeys))
	for k := range s.trackedKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		v, err := s.backend.GetRaw([]byte(k))
		if err != nil {
			return Hash{}, errStorage("read %x for state root: %w", k, err)
		}
		h.Write([]byte(k))
		h.Write(v)
	}
	var out Hash
	copy(out[:], h.Sum(nil))
	return out, nil
}

// ExecuteBlock verifies the block's proof-of-work, builds a fresh Runtime
// with the default module set, and applies every transaction in body order.
// On any module error the whole block fails; writes already made are not
// rolled back (spec §4.3, §9 Open Question 1).
func (s *State) ExecuteBlock(block *Block) error {
	preimage := block.Header.SerializeWithoutNonce()
	hash := ForgeHash(preimage, block.Header.Nonce)
	if !MeetsDifficulty(hash, block.Header.DifficultyTarget) {
		return ErrPowVerificationFailed
	}

	rt := NewDefaultRuntime()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentHeight = block.Header.Height

	start := time.Now()
	for i := range block.Body {
		tx := &block.Body[i]
		if err := rt.dispatchTxLocked(tx, s); err != nil {
			s.Logger.WithFields(logrus.Fields{
				"height": block.Header.Height,
				"tx":     i,
				"module": tx.ModuleID,
				"call":   tx.CallID,
			}).Errorf("block application failed: %v", err)
			return err
		}
	}

	s.Logger.WithFields(logrus.Fields{
		"height": block.Header.Height,
		"txs":    len(block.Body),
		"took":   time.Since(start),
	}).Info("block applied")
	return nil
}

// HasGenesisRun reports whether the genesis initializer has already run.
func (s *State) HasGenesisRun() (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getBoolLocked([]byte(keyGenesisInitialized))
}
