package eligibility

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/civicworks/tenderengine/internal/lib"
)

func TestEligibleByDefault(t *testing.T) {
	gate := NewGate(lib.NewTestLogger())
	require.True(t, gate.IsEligible(lib.GetRandomAddr()))
}

func TestOutstandingReportBlocksAndClears(t *testing.T) {
	gate := NewGate(lib.NewTestLogger())
	bidder := lib.GetRandomAddr()

	gate.MarkOutstanding(bidder, "tender-1")
	require.False(t, gate.IsEligible(bidder))
	require.Equal(t, []string{"tender-1"}, gate.Outstanding(bidder))

	gate.Clear(bidder, "tender-1")
	require.True(t, gate.IsEligible(bidder))
}

func TestMultipleOutstandingReports(t *testing.T) {
	gate := NewGate(lib.NewTestLogger())
	bidder := lib.GetRandomAddr()

	gate.MarkOutstanding(bidder, "tender-1")
	gate.MarkOutstanding(bidder, "tender-2")

	gate.Clear(bidder, "tender-1")
	require.False(t, gate.IsEligible(bidder), "still one report outstanding")

	gate.Clear(bidder, "tender-2")
	require.True(t, gate.IsEligible(bidder))
}

func TestClearUnknownTenderIsNoop(t *testing.T) {
	gate := NewGate(lib.NewTestLogger())
	bidder := lib.GetRandomAddr()

	gate.Clear(bidder, "never-marked")
	require.True(t, gate.IsEligible(bidder))
}
