package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenesisBootstrapsIdentityAndArchon(t *testing.T) {
	s := newTestState()
	require.NoError(t, RunGenesis(s))

	bal, err := GetBalance(s, GenesisIdentity)
	require.NoError(t, err)
	require.Equal(t, GenesisInitialBalance, bal)

	archon, err := IsArchon(s, GenesisIdentity)
	require.NoError(t, err)
	require.True(t, archon)

	ran, err := s.HasGenesisRun()
	require.NoError(t, err)
	require.True(t, ran)
}

func TestGenesisIdempotentAcrossRuns(t *testing.T) {
	s := newTestState()
	require.NoError(t, RunGenesis(s))
	root1, err := s.StateRoot()
	require.NoError(t, err)

	require.NoError(t, RunGenesis(s))
	root2, err := s.StateRoot()
	require.NoError(t, err)

	require.Equal(t, root1, root2)

	bal, err := GetBalance(s, GenesisIdentity)
	require.NoError(t, err)
	require.Equal(t, GenesisInitialBalance, bal) // not double-minted
}
