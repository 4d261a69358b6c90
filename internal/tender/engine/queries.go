package engine

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"gitlab.com/civicworks/tenderengine/internal/journal"
	"gitlab.com/civicworks/tenderengine/internal/lib"
	"gitlab.com/civicworks/tenderengine/internal/tender"
)

// Storage hands out live records, so every read acquires the record's lock
// and returns a deep copy. Writers mutate under the same locks; readers never
// observe a release half-applied and never share state past the unlock.

func (e *Engine) GetTender(ctx context.Context, id string) (*tender.Tender, error) {
	t, tm, err := e.lockTender(ctx, id)
	if err != nil {
		return nil, err
	}
	defer tm.Unlock()
	return t.Clone(), nil
}

func (e *Engine) ListTenders(ctx context.Context, projectID string) ([]*tender.Tender, error) {
	var res []*tender.Tender
	for _, t := range e.store.TendersByProject(projectID) {
		m := e.tenderLock(t.ID)
		if err := m.LockCtx(ctx); err != nil {
			return nil, err
		}
		res = append(res, t.Clone())
		m.Unlock()
	}
	return res, nil
}

func (e *Engine) ListMilestones(ctx context.Context, tenderID string) ([]*tender.Milestone, error) {
	m := e.tenderLock(tenderID)
	if err := m.LockCtx(ctx); err != nil {
		return nil, err
	}
	defer m.Unlock()

	var res []*tender.Milestone
	for _, ms := range e.store.MilestonesByTender(tenderID) {
		res = append(res, ms.Clone())
	}
	return res, nil
}

// Reports are immutable once stored, so no lock is needed to read them.
func (e *Engine) GetQualityReport(tenderID string) (*tender.QualityReport, error) {
	r, ok := e.store.GetReport(tenderID)
	if !ok {
		return nil, lib.WrapError(tender.ErrNotFound, fmt.Errorf("quality report for tender %s", tenderID))
	}
	return r, nil
}

// GetTenderProgress reports completion as releasedAmount / tender budget.
func (e *Engine) GetTenderProgress(ctx context.Context, tenderID string) (tender.Progress, error) {
	t, tm, err := e.lockTender(ctx, tenderID)
	if err != nil {
		return tender.Progress{}, err
	}
	defer tm.Unlock()

	percentage := 0
	if t.Budget.Sign() > 0 {
		pct := new(big.Int).Mul(t.ReleasedAmount, big.NewInt(100))
		percentage = int(pct.Div(pct, t.Budget).Int64())
	}
	return tender.Progress{
		Released:   new(big.Int).Set(t.ReleasedAmount),
		Total:      new(big.Int).Set(t.Budget),
		Percentage: percentage,
	}, nil
}

// TenderJournal returns the recorded state transitions for a tender, oldest
// first. Entries are copied by value under the journal's own mutex.
func (e *Engine) TenderJournal(tenderID string) []journal.Entry {
	return e.journal.ByTender(tenderID)
}

func (e *Engine) TendersByBidder(ctx context.Context, bidder common.Address) ([]*tender.Tender, error) {
	var res []*tender.Tender
	for _, t := range e.store.TendersByBidder(bidder) {
		m := e.tenderLock(t.ID)
		if err := m.LockCtx(ctx); err != nil {
			return nil, err
		}
		res = append(res, t.Clone())
		m.Unlock()
	}
	return res, nil
}

func (e *Engine) IsEligible(bidder common.Address) bool {
	return e.gate.IsEligible(bidder)
}

func (e *Engine) OutstandingReports(bidder common.Address) []string {
	return e.gate.Outstanding(bidder)
}
