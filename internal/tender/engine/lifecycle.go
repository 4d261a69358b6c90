package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gitlab.com/civicworks/tenderengine/internal/journal"
	"gitlab.com/civicworks/tenderengine/internal/lib"
	"gitlab.com/civicworks/tenderengine/internal/metrics"
	"gitlab.com/civicworks/tenderengine/internal/tender"
	"gitlab.com/civicworks/tenderengine/internal/tender/registry"
)

// SubmitTender places an anonymous bid: the commitment and the bid payload
// enter the registry together, producing a tender in Submitted status with no
// bound identity.
func (e *Engine) SubmitTender(ctx context.Context, actor tender.Actor, commitment common.Hash, payload registry.SubmitPayload) (t *tender.Tender, err error) {
	defer func() { metrics.RecordOperation("submit_tender", err) }()

	if err = requireRole(actor, tender.RoleBidder); err != nil {
		return nil, err
	}

	m := e.projectLock(payload.ProjectID)
	if err = m.LockCtx(ctx); err != nil {
		return nil, err
	}
	defer m.Unlock()

	t, err = e.registry.Submit(commitment, payload)
	if err != nil {
		return nil, err
	}

	if project, ok := e.store.GetProject(payload.ProjectID); ok && project.Status == tender.ProjectStatusCreated {
		project.Status = tender.ProjectStatusPendingApproval
		e.store.StoreProject(project)
	}

	e.journal.Add(journal.Entry{
		Operation: "submit_tender",
		TenderID:  t.ID,
		Amount:    t.Budget,
		Detail:    fmt.Sprintf("anonymous bid against project %s", payload.ProjectID),
	})
	return t.Clone(), nil
}

// ApproveTender verifies the reveal proof, checks the about-to-be-revealed
// bidder's eligibility, reserves the tender budget inside the project and
// flips the tender to Approved. On any failure the tender is left untouched:
// no partial reveal, no partial allocation.
func (e *Engine) ApproveTender(ctx context.Context, actor tender.Actor, tenderID string, claimed common.Address, nonce string) (bound common.Address, err error) {
	defer func() { metrics.RecordOperation("approve_tender", err) }()

	if err = requireRole(actor, tender.RoleAdmin); err != nil {
		return common.Address{}, err
	}

	t, tm, err := e.lockTender(ctx, tenderID)
	if err != nil {
		return common.Address{}, err
	}
	defer tm.Unlock()

	if t.Status != tender.TenderStatusSubmitted {
		return common.Address{}, tender.TransitionError("tender", t.ID, t.Status, "approve")
	}

	if err = e.registry.Verify(t, claimed, nonce); err != nil {
		return common.Address{}, err
	}

	if !e.gate.IsEligible(claimed) {
		outstanding := e.gate.Outstanding(claimed)
		return common.Address{}, lib.WrapError(tender.ErrIneligibleBidder,
			fmt.Errorf("bidder %s has no quality report for tender(s) %s",
				lib.AddrShort(claimed.Hex()), strings.Join(outstanding, ", ")))
	}

	pm := e.projectLock(t.ProjectID)
	if err = pm.LockCtx(ctx); err != nil {
		return common.Address{}, err
	}
	defer pm.Unlock()

	project, ok := e.store.GetProject(t.ProjectID)
	if !ok {
		return common.Address{}, lib.WrapError(tender.ErrNotFound, fmt.Errorf("project %s", t.ProjectID))
	}

	if err = e.ledger.Allocate(project, t.Budget); err != nil {
		return common.Address{}, err
	}

	e.registry.Bind(t, claimed)
	t.Status = tender.TenderStatusApproved
	e.store.StoreTender(t)

	project.Status = tender.ProjectStatusInProgress
	e.store.StoreProject(project)

	e.journal.Add(journal.Entry{
		Operation: "approve_tender",
		TenderID:  t.ID,
		Actor:     actor.Address,
		Amount:    t.Budget,
		Detail:    fmt.Sprintf("bidder %s revealed", lib.AddrShort(claimed.Hex())),
	})
	e.log.Infof("tender %s approved, bidder %s revealed", t.ID, lib.AddrShort(claimed.Hex()))
	return claimed, nil
}

// RejectTender terminally rejects a submitted tender. The commitment stays
// registered so the same bid cannot be replayed.
func (e *Engine) RejectTender(ctx context.Context, actor tender.Actor, tenderID string, reason string) (err error) {
	defer func() { metrics.RecordOperation("reject_tender", err) }()

	if err = requireRole(actor, tender.RoleAdmin); err != nil {
		return err
	}
	if reason == "" {
		return lib.WrapError(tender.ErrValidation, fmt.Errorf("rejection reason is empty"))
	}

	t, tm, err := e.lockTender(ctx, tenderID)
	if err != nil {
		return err
	}
	defer tm.Unlock()

	if t.Status != tender.TenderStatusSubmitted {
		return tender.TransitionError("tender", t.ID, t.Status, "reject")
	}

	t.Status = tender.TenderStatusRejected
	t.RejectReason = reason
	e.store.StoreTender(t)

	e.journal.Add(journal.Entry{
		Operation: "reject_tender",
		TenderID:  t.ID,
		Actor:     actor.Address,
		Detail:    reason,
	})
	e.log.Infof("tender %s rejected: %s", t.ID, reason)
	return nil
}

// StartWork flips an approved tender to InProgress. A second call is a no-op,
// not an error.
func (e *Engine) StartWork(ctx context.Context, actor tender.Actor, tenderID string) (err error) {
	defer func() { metrics.RecordOperation("start_work", err) }()

	t, tm, err := e.lockTender(ctx, tenderID)
	if err != nil {
		return err
	}
	defer tm.Unlock()

	if err = requireBoundBidder(actor, t); err != nil {
		return err
	}

	switch t.Status {
	case tender.TenderStatusInProgress:
		return nil // idempotent
	case tender.TenderStatusApproved:
	default:
		return tender.TransitionError("tender", t.ID, t.Status, "start work")
	}

	t.Status = tender.TenderStatusInProgress
	e.store.StoreTender(t)
	metrics.ActiveTenders.Inc()

	e.journal.Add(journal.Entry{
		Operation: "start_work",
		TenderID:  t.ID,
		Actor:     actor.Address,
	})
	e.log.Infof("tender %s work started by %s", t.ID, lib.AddrShort(actor.Address.Hex()))
	return nil
}

// completeIfDone flips the tender to Completed once every milestone slice is
// Released. Completion marks the bidder ineligible for new approvals until
// the quality report is filed. Caller holds the tender lock.
func (e *Engine) completeIfDone(t *tender.Tender) {
	milestones := e.store.MilestonesByTender(t.ID)
	released := 0
	for _, m := range milestones {
		if m.Status == tender.MilestoneStatusReleased {
			released++
		}
	}
	if released < e.cfg.MilestoneSlices {
		return
	}

	t.Status = tender.TenderStatusCompleted
	e.store.StoreTender(t)
	metrics.ActiveTenders.Dec()

	if project, ok := e.store.GetProject(t.ProjectID); ok {
		project.Status = tender.ProjectStatusCompleted
		e.store.StoreProject(project)
	}

	e.gate.MarkOutstanding(t.Bidder, t.ID)

	e.journal.Add(journal.Entry{
		Operation: "complete_tender",
		TenderID:  t.ID,
		Actor:     t.Bidder,
		Detail:    "all milestone slices released, quality report due",
	})
	e.log.Infof("tender %s completed, quality report due from %s", t.ID, lib.AddrShort(t.Bidder.Hex()))
}
