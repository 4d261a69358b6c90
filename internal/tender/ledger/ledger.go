package ledger

import (
	"fmt"
	"math/big"

	"gitlab.com/civicworks/tenderengine/internal/interfaces"
	"gitlab.com/civicworks/tenderengine/internal/lib"
	"gitlab.com/civicworks/tenderengine/internal/storage"
	"gitlab.com/civicworks/tenderengine/internal/tender"
	"go.uber.org/atomic"
)

// Ledger is the single source of truth for balances: allocatedFunds and
// spentFunds per project, releasedAmount per tender. All mutation is funneled
// through the escrow release path; every other component reads only.
//
// The ledger itself performs no locking. Callers serialize mutations per
// tender and per project.
type Ledger struct {
	store *storage.Storage

	totalReleased atomic.Int64 // running count of successful releases, feeds metrics
	log           interfaces.ILogger
}

func NewLedger(store *storage.Storage, log interfaces.ILogger) *Ledger {
	return &Ledger{
		store: store,
		log:   log,
	}
}

// Allocate reserves the tender's budget inside its project at approval time.
// Fails if the reservation would push allocatedFunds over the project budget.
func (l *Ledger) Allocate(project *tender.Project, amount *big.Int) error {
	allocated := new(big.Int).Add(project.AllocatedFunds, amount)
	if allocated.Cmp(project.Budget) > 0 {
		return lib.WrapError(tender.ErrBudgetExceeded,
			fmt.Errorf("project %s: allocating %s exceeds budget %s (already allocated %s)",
				project.ID, amount, project.Budget, project.AllocatedFunds))
	}

	project.AllocatedFunds = allocated
	l.store.StoreProject(project)
	l.log.Infof("project %s allocated %s, total allocated %s", project.ID, amount, allocated)
	return nil
}

// Release debits the project's allocation and credits the tender's released
// amount as one unit. The caller holds both the tender and the project lock
// so the three mutations (spentFunds, releasedAmount, milestone status) are
// never observed partially.
func (l *Ledger) Release(project *tender.Project, t *tender.Tender, amount *big.Int) error {
	spent := new(big.Int).Add(project.SpentFunds, amount)
	if spent.Cmp(project.AllocatedFunds) > 0 {
		return lib.WrapError(tender.ErrBudgetExceeded,
			fmt.Errorf("project %s: insufficient allocated funds: spending %s exceeds allocation %s (already spent %s)",
				project.ID, amount, project.AllocatedFunds, project.SpentFunds))
	}

	released := new(big.Int).Add(t.ReleasedAmount, amount)
	if released.Cmp(t.Budget) > 0 {
		return lib.WrapError(tender.ErrBudgetExceeded,
			fmt.Errorf("tender %s: releasing %s exceeds budget %s (already released %s)",
				t.ID, amount, t.Budget, t.ReleasedAmount))
	}

	project.SpentFunds = spent
	t.ReleasedAmount = released
	l.store.StoreProject(project)
	l.store.StoreTender(t)
	l.totalReleased.Inc()

	l.log.Infof("released %s for tender %s, project %s spent %s of %s allocated",
		amount, t.ID, project.ID, spent, project.AllocatedFunds)
	return nil
}

// Remaining returns tender.budget - tender.releasedAmount, used by milestone
// submission to bound fundAmount.
func (l *Ledger) Remaining(tenderID string) (*big.Int, error) {
	t, ok := l.store.GetTender(tenderID)
	if !ok {
		return nil, lib.WrapError(tender.ErrNotFound, fmt.Errorf("tender %s", tenderID))
	}
	return t.Remaining(), nil
}

// ReleaseCount reports how many releases the ledger has performed.
func (l *Ledger) ReleaseCount() int64 {
	return l.totalReleased.Load()
}
