package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealcoach/pkg/flow"
	"dealcoach/pkg/taxes"
	"dealcoach/pkg/utils"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	m := NewMemoryStore()

	s := flow.NewSession(taxes.Default(), utils.GetLogger())
	s.SetNumbers(flow.NumbersInput{TargetOTD: 25000, WalkAwayOTD: 25800})
	require.NoError(t, s.RecordDealerAmount(26500))

	require.NoError(t, m.SaveSession(s.Snapshot()))

	snap, err := m.LoadSession(s.ID())
	require.NoError(t, err)
	assert.Equal(t, s.ID(), snap.ID)
	require.NotNil(t, snap.State.DealerCurrentOTD)
	assert.EqualValues(t, 26500, *snap.State.DealerCurrentOTD)

	restored := flow.Restore(snap, taxes.Default(), utils.GetLogger())
	assert.Equal(t, flow.StepHandleTactic, restored.Step())

	require.NoError(t, m.DeleteSession(s.ID()))
	_, err = m.LoadSession(s.ID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreEntitlements(t *testing.T) {
	m := NewMemoryStore()

	entitled, err := m.HasInPersonPack("user-1")
	require.NoError(t, err)
	assert.False(t, entitled, "unknown user has no pack")

	require.NoError(t, m.SetInPersonPack("user-1", true))
	entitled, err = m.HasInPersonPack("user-1")
	require.NoError(t, err)
	assert.True(t, entitled)
}
