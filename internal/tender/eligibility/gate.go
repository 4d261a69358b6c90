package eligibility

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"gitlab.com/civicworks/tenderengine/internal/interfaces"
	"gitlab.com/civicworks/tenderengine/internal/lib"
)

// Gate tracks whether a bidder may have new tenders approved. A bidder is
// eligible by default and becomes ineligible while any completed tender of
// theirs lacks a quality report. The gate is consulted at approval time, not
// at submission time, so bids can still be placed while blocked.
type Gate struct {
	mu          sync.Mutex
	outstanding map[common.Address]lib.Set // bidder -> tender ids awaiting a report

	log interfaces.ILogger
}

func NewGate(log interfaces.ILogger) *Gate {
	return &Gate{
		outstanding: make(map[common.Address]lib.Set),
		log:         log,
	}
}

// IsEligible reports whether the bidder has no outstanding quality reports.
func (g *Gate) IsEligible(bidder common.Address) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.outstanding[bidder].Len() == 0
}

// MarkOutstanding records a completed tender awaiting its quality report,
// blocking future approvals for the bidder.
func (g *Gate) MarkOutstanding(bidder common.Address, tenderID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	set, ok := g.outstanding[bidder]
	if !ok {
		set = lib.NewSet()
		g.outstanding[bidder] = set
	}
	set.Add(tenderID)
	g.log.Infof("bidder %s ineligible: quality report outstanding for tender %s", lib.AddrShort(bidder.Hex()), tenderID)
}

// Clear removes the outstanding report marker once the report is filed.
func (g *Gate) Clear(bidder common.Address, tenderID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	set, ok := g.outstanding[bidder]
	if !ok {
		return
	}
	if set.Remove(tenderID) && set.Len() == 0 {
		g.log.Infof("bidder %s eligible again", lib.AddrShort(bidder.Hex()))
	}
}

// Outstanding lists the tender ids still awaiting a report for the bidder.
func (g *Gate) Outstanding(bidder common.Address) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.outstanding[bidder].ToSlice()
}
