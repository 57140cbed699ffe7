package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"forgechain/core"
)

// openState opens the backend named by backend ("mem" or "leveldb") and
// wraps it in a core.State using logger for block/dispatch diagnostics. A
// leveldb backend returns a non-nil close func; a mem backend returns a
// no-op.
func openState(backend, dbPath string, logger *logrus.Logger) (*core.State, func() error, error) {
	switch backend {
	case "", "mem":
		return core.NewState(core.NewMemBackend(), logger), func() error { return nil }, nil
	case "leveldb":
		b, err := core.OpenLevelDBBackend(dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open leveldb backend at %s: %w", dbPath, err)
		}
		return core.NewState(b, logger), b.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
