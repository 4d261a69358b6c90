package engine

import (
	"context"
	"fmt"
	"sync"

	"gitlab.com/civicworks/tenderengine/internal/interfaces"
	"gitlab.com/civicworks/tenderengine/internal/journal"
	"gitlab.com/civicworks/tenderengine/internal/lib"
	"gitlab.com/civicworks/tenderengine/internal/storage"
	"gitlab.com/civicworks/tenderengine/internal/tender"
	"gitlab.com/civicworks/tenderengine/internal/tender/eligibility"
	"gitlab.com/civicworks/tenderengine/internal/tender/ledger"
	"gitlab.com/civicworks/tenderengine/internal/tender/registry"
)

type Config struct {
	// QualityThreshold is the minimum acceptable milestone quality score.
	// A verify call below it is a caller error, not a silent rejection.
	QualityThreshold int
	// MilestoneSlices is the number of milestone task slices per tender.
	MilestoneSlices int
	// SequentialMilestones requires the prior slice to be verified or
	// released before the next one may be submitted.
	SequentialMilestones bool
}

// Engine owns the tender lifecycle and the milestone escrow. Every
// state-mutating operation runs under a lock scoped to the tender, and fund
// release additionally under the project lock, so a release is observed as
// one unit: ledger debit, releasedAmount update and milestone status flip.
type Engine struct {
	cfg Config

	store    *storage.Storage
	registry *registry.Registry
	ledger   *ledger.Ledger
	gate     *eligibility.Gate
	journal  *journal.Journal

	tenderLocks  sync.Map // tender id -> *lib.Mutex
	projectLocks sync.Map // project id -> *lib.Mutex

	log interfaces.ILogger
}

func NewEngine(
	cfg Config,
	store *storage.Storage,
	reg *registry.Registry,
	ldg *ledger.Ledger,
	gate *eligibility.Gate,
	jrn *journal.Journal,
	log interfaces.ILogger,
) *Engine {
	return &Engine{
		cfg:      cfg,
		store:    store,
		registry: reg,
		ledger:   ldg,
		gate:     gate,
		journal:  jrn,
		log:      log,
	}
}

func (e *Engine) tenderLock(id string) *lib.Mutex {
	actual, _ := e.tenderLocks.LoadOrStore(id, lib.NewMutex())
	return actual.(*lib.Mutex)
}

func (e *Engine) projectLock(id string) *lib.Mutex {
	actual, _ := e.projectLocks.LoadOrStore(id, lib.NewMutex())
	return actual.(*lib.Mutex)
}

// lockTender acquires the tender's exclusive section and loads the record.
func (e *Engine) lockTender(ctx context.Context, id string) (*tender.Tender, *lib.Mutex, error) {
	m := e.tenderLock(id)
	if err := m.LockCtx(ctx); err != nil {
		return nil, nil, err
	}
	t, ok := e.store.GetTender(id)
	if !ok {
		m.Unlock()
		return nil, nil, lib.WrapError(tender.ErrNotFound, fmt.Errorf("tender %s", id))
	}
	return t, m, nil
}

func requireRole(actor tender.Actor, role tender.Role) error {
	if actor.Role != role {
		return lib.WrapError(tender.ErrAuthorization,
			fmt.Errorf("operation requires role %q, caller has %q", role, actor.Role))
	}
	return nil
}

// requireBoundBidder checks that the caller is the tender's revealed bidder.
func requireBoundBidder(actor tender.Actor, t *tender.Tender) error {
	if err := requireRole(actor, tender.RoleBidder); err != nil {
		return err
	}
	if t.IsAnonymous || actor.Address != t.Bidder {
		return lib.WrapError(tender.ErrAuthorization,
			fmt.Errorf("caller %s is not the bound bidder of tender %s", lib.AddrShort(actor.Address.Hex()), t.ID))
	}
	return nil
}
