package storage

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/civicworks/tenderengine/internal/lib"
	"gitlab.com/civicworks/tenderengine/internal/tender"
)

func TestCommitmentIndex(t *testing.T) {
	store := NewStorage()

	commitment := lib.GetRandomAddr().Hash()
	require.True(t, store.RegisterCommitment(commitment, "tender-1"))
	require.False(t, store.RegisterCommitment(commitment, "tender-2"), "duplicate commitment must be refused")

	store.StoreTender(&tender.Tender{ID: "tender-1", Budget: big.NewInt(10), ReleasedAmount: big.NewInt(0)})

	found, ok := store.TenderByCommitment(commitment)
	require.True(t, ok)
	require.Equal(t, "tender-1", found.ID)

	store.UnregisterCommitment(commitment)
	_, ok = store.TenderByCommitment(commitment)
	require.False(t, ok)
}

func TestMilestonesByTenderOrdered(t *testing.T) {
	store := NewStorage()

	store.StoreMilestone(&tender.Milestone{ID: "m3", TenderID: "t1", Sequence: 3})
	store.StoreMilestone(&tender.Milestone{ID: "m1", TenderID: "t1", Sequence: 1})
	store.StoreMilestone(&tender.Milestone{ID: "m2", TenderID: "t1", Sequence: 2})
	store.StoreMilestone(&tender.Milestone{ID: "other", TenderID: "t2", Sequence: 1})

	milestones := store.MilestonesByTender("t1")
	require.Len(t, milestones, 3)
	for i, m := range milestones {
		require.Equal(t, i+1, m.Sequence)
	}

	m, ok := store.MilestoneBySequence("t1", 2)
	require.True(t, ok)
	require.Equal(t, "m2", m.ID)

	_, ok = store.MilestoneBySequence("t1", 4)
	require.False(t, ok)
}

func TestTendersByBidderSkipsAnonymous(t *testing.T) {
	store := NewStorage()
	bidder := lib.GetRandomAddr()

	store.StoreTender(&tender.Tender{ID: "t1", Bidder: bidder, IsAnonymous: false})
	store.StoreTender(&tender.Tender{ID: "t2", Bidder: bidder, IsAnonymous: true})

	tenders := store.TendersByBidder(bidder)
	require.Len(t, tenders, 1)
	require.Equal(t, "t1", tenders[0].ID)
}
