package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProgressionScenarioS5(t *testing.T) {
	s := newTestState()

	_, err := CreateAeonProfile(s, addrN(1), "Wanderer", nil, 0)
	require.NoError(t, err)

	require.NoError(t, AddGnosisXP(s, addrN(1), 500))
	require.NoError(t, AddSyzygyScore(s, addrN(1), 300))
	require.NoError(t, RecomputeAscension(s, addrN(1)))

	p, err := GetAeonProfile(s, addrN(1))
	require.NoError(t, err)
	require.Equal(t, uint32(2), p.AscensionLevel) // 500 + 2*300 = 1100 -> 1 + 1100/1000 = 2

	require.NoError(t, AddSyzygyScore(s, addrN(1), 9700))
	require.NoError(t, UpdateBadges(s, addrN(1)))

	p, err = GetAeonProfile(s, addrN(1))
	require.NoError(t, err)
	require.Contains(t, p.Badges, LuminaryBadge)
}

func TestCreateAeonProfileAlreadyExists(t *testing.T) {
	s := newTestState()
	_, err := CreateAeonProfile(s, addrN(1), "A", nil, 0)
	require.NoError(t, err)
	_, err = CreateAeonProfile(s, addrN(1), "A", nil, 0)
	require.ErrorContains(t, err, "ProfileAlreadyExists")
}

func TestAddXpWithoutProfile(t *testing.T) {
	s := newTestState()
	err := AddGnosisXP(s, addrN(1), 1)
	require.ErrorContains(t, err, "ProfileNotFound")
}

func TestAscensionFormulaProperty(t *testing.T) {
	s := newTestState()
	_, err := CreateAeonProfile(s, addrN(1), "A", nil, 0)
	require.NoError(t, err)

	cases := []struct {
		xp, score uint64
		want      uint32
	}{
		{0, 0, 1},
		{999, 0, 1},
		{1000, 0, 2},
		{0, 500, 2},
		{250, 375, 2}, // 250 + 750 = 1000
	}
	for _, tc := range cases {
		s2 := newTestState()
		_, err := CreateAeonProfile(s2, addrN(1), "A", nil, 0)
		require.NoError(t, err)
		require.NoError(t, AddGnosisXP(s2, addrN(1), tc.xp))
		require.NoError(t, AddSyzygyScore(s2, addrN(1), tc.score))
		require.NoError(t, RecomputeAscension(s2, addrN(1)))
		p, err := GetAeonProfile(s2, addrN(1))
		require.NoError(t, err)
		require.Equal(t, tc.want, p.AscensionLevel, "xp=%d score=%d", tc.xp, tc.score)
	}
}

func TestClaimArchonIdempotent(t *testing.T) {
	s := newTestState()
	rt := NewDefaultRuntime()
	tx := &Transaction{From: addrN(1), ModuleID: "avatars_profiles", CallID: "claim_archon"}
	require.NoError(t, rt.DispatchTx(tx, s))
	require.NoError(t, rt.DispatchTx(tx, s))

	archon, err := IsArchon(s, addrN(1))
	require.NoError(t, err)
	require.True(t, archon)
}
