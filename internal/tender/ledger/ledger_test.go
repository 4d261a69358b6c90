package ledger

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/civicworks/tenderengine/internal/lib"
	"gitlab.com/civicworks/tenderengine/internal/storage"
	"gitlab.com/civicworks/tenderengine/internal/tender"
)

func newTestLedger(t *testing.T) (*Ledger, *tender.Project, *tender.Tender) {
	t.Helper()

	store := storage.NewStorage()
	project := &tender.Project{
		ID:             "project-1",
		Name:           "bridge repair",
		Budget:         big.NewInt(100),
		AllocatedFunds: big.NewInt(0),
		SpentFunds:     big.NewInt(0),
	}
	store.StoreProject(project)

	tdr := &tender.Tender{
		ID:             "tender-1",
		ProjectID:      project.ID,
		Budget:         big.NewInt(100),
		ReleasedAmount: big.NewInt(0),
	}
	store.StoreTender(tdr)

	return NewLedger(store, lib.NewTestLogger()), project, tdr
}

func TestAllocateWithinBudget(t *testing.T) {
	ldg, project, _ := newTestLedger(t)

	require.NoError(t, ldg.Allocate(project, big.NewInt(60)))
	require.Equal(t, int64(60), project.AllocatedFunds.Int64())

	require.NoError(t, ldg.Allocate(project, big.NewInt(40)))
	require.Equal(t, int64(100), project.AllocatedFunds.Int64())

	err := ldg.Allocate(project, big.NewInt(1))
	require.ErrorIs(t, err, tender.ErrBudgetExceeded)
	require.Equal(t, int64(100), project.AllocatedFunds.Int64())
}

func TestReleaseDebitsAndCredits(t *testing.T) {
	ldg, project, tdr := newTestLedger(t)
	require.NoError(t, ldg.Allocate(project, big.NewInt(100)))

	require.NoError(t, ldg.Release(project, tdr, big.NewInt(20)))
	require.Equal(t, int64(20), project.SpentFunds.Int64())
	require.Equal(t, int64(20), tdr.ReleasedAmount.Int64())
	require.Equal(t, int64(80), tdr.Remaining().Int64())
	require.Equal(t, int64(1), ldg.ReleaseCount())
}

func TestReleaseInsufficientAllocation(t *testing.T) {
	ldg, project, tdr := newTestLedger(t)
	require.NoError(t, ldg.Allocate(project, big.NewInt(30)))

	err := ldg.Release(project, tdr, big.NewInt(40))
	require.ErrorIs(t, err, tender.ErrBudgetExceeded)

	// nothing moved
	require.Equal(t, int64(0), project.SpentFunds.Int64())
	require.Equal(t, int64(0), tdr.ReleasedAmount.Int64())
}

func TestReleaseOverTenderBudget(t *testing.T) {
	ldg, project, tdr := newTestLedger(t)
	tdr.Budget = big.NewInt(50)
	require.NoError(t, ldg.Allocate(project, big.NewInt(100)))

	err := ldg.Release(project, tdr, big.NewInt(60))
	require.ErrorIs(t, err, tender.ErrBudgetExceeded)
	require.Equal(t, int64(0), project.SpentFunds.Int64())
}

func TestRemaining(t *testing.T) {
	ldg, project, tdr := newTestLedger(t)
	require.NoError(t, ldg.Allocate(project, big.NewInt(100)))
	require.NoError(t, ldg.Release(project, tdr, big.NewInt(35)))

	remaining, err := ldg.Remaining(tdr.ID)
	require.NoError(t, err)
	require.Equal(t, int64(65), remaining.Int64())

	_, err = ldg.Remaining("missing")
	require.ErrorIs(t, err, tender.ErrNotFound)
}
