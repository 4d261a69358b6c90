package engine

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"gitlab.com/civicworks/tenderengine/internal/journal"
	"gitlab.com/civicworks/tenderengine/internal/lib"
	"gitlab.com/civicworks/tenderengine/internal/metrics"
	"gitlab.com/civicworks/tenderengine/internal/tender"
)

// MilestoneProof carries the opaque proof references for a milestone
// submission. The engine never fetches or interprets them.
type MilestoneProof struct {
	Ref  string
	Meta string // geolocation or other metadata
}

// SubmitMilestone creates a milestone in Submitted status, or resets a
// previously rejected one to Submitted under the same id with the proof
// overwritten. Rejects if fundAmount would push the tender's cumulative
// milestone allocation over its budget.
func (e *Engine) SubmitMilestone(ctx context.Context, actor tender.Actor, tenderID string, sequence int, fundAmount *big.Int, proof MilestoneProof) (m *tender.Milestone, err error) {
	defer func() { metrics.RecordOperation("submit_milestone", err) }()

	t, tm, err := e.lockTender(ctx, tenderID)
	if err != nil {
		return nil, err
	}
	defer tm.Unlock()

	if err = requireBoundBidder(actor, t); err != nil {
		return nil, err
	}
	if t.Status != tender.TenderStatusInProgress {
		return nil, tender.TransitionError("tender", t.ID, t.Status, "submit milestone")
	}
	if sequence < 1 || sequence > e.cfg.MilestoneSlices {
		return nil, lib.WrapError(tender.ErrValidation,
			fmt.Errorf("milestone sequence %d outside 1..%d", sequence, e.cfg.MilestoneSlices))
	}
	if fundAmount == nil || fundAmount.Sign() <= 0 {
		return nil, lib.WrapError(tender.ErrValidation, fmt.Errorf("milestone fund amount must be positive"))
	}
	if proof.Ref == "" {
		return nil, lib.WrapError(tender.ErrValidation, fmt.Errorf("milestone proof reference is empty"))
	}

	if e.cfg.SequentialMilestones && sequence > 1 {
		prior, ok := e.store.MilestoneBySequence(t.ID, sequence-1)
		if !ok || (prior.Status != tender.MilestoneStatusVerified && prior.Status != tender.MilestoneStatusReleased) {
			return nil, tender.TransitionError("tender", t.ID, t.Status,
				fmt.Sprintf("submit milestone %d before slice %d is verified", sequence, sequence-1))
		}
	}

	existing, exists := e.store.MilestoneBySequence(t.ID, sequence)
	if exists && existing.Status != tender.MilestoneStatusRejected {
		return nil, tender.TransitionError("milestone", existing.ID, existing.Status, "resubmit")
	}

	// cumulative allocation over non-rejected milestones; a rejected slice
	// being resubmitted is replaced, so its old amount does not count
	allocated := big.NewInt(0)
	for _, other := range e.store.MilestonesByTender(t.ID) {
		if other.Sequence == sequence || other.Status == tender.MilestoneStatusRejected {
			continue
		}
		allocated.Add(allocated, other.FundAmount)
	}
	allocated.Add(allocated, fundAmount)
	if allocated.Cmp(t.Budget) > 0 {
		return nil, lib.WrapError(tender.ErrBudgetExceeded,
			fmt.Errorf("tender %s: milestone allocation %s exceeds budget %s", t.ID, allocated, t.Budget))
	}

	if exists {
		existing.FundAmount = new(big.Int).Set(fundAmount)
		existing.ProofRef = proof.Ref
		existing.ProofMeta = proof.Meta
		existing.Status = tender.MilestoneStatusSubmitted
		existing.QualityScore = 0
		existing.RejectReason = ""
		existing.SubmittedAt = time.Now()
		m = existing
	} else {
		m = &tender.Milestone{
			ID:          uuid.NewString(),
			TenderID:    t.ID,
			Sequence:    sequence,
			FundAmount:  new(big.Int).Set(fundAmount),
			ProofRef:    proof.Ref,
			ProofMeta:   proof.Meta,
			Status:      tender.MilestoneStatusSubmitted,
			SubmittedAt: time.Now(),
		}
	}
	e.store.StoreMilestone(m)

	e.journal.Add(journal.Entry{
		Operation: "submit_milestone",
		TenderID:  t.ID,
		Actor:     actor.Address,
		Amount:    m.FundAmount,
		Detail:    fmt.Sprintf("milestone %d, proof %s", sequence, proof.Ref),
	})
	e.log.Infof("milestone %d of tender %s submitted, amount %s", sequence, t.ID, fundAmount)
	return m.Clone(), nil
}

// ClaimMilestoneReview marks a submitted milestone as under review by the
// verifier. Optional: verify and reject accept milestones straight from
// Submitted as well.
func (e *Engine) ClaimMilestoneReview(ctx context.Context, actor tender.Actor, milestoneID string) (err error) {
	defer func() { metrics.RecordOperation("claim_review", err) }()

	if err = requireRole(actor, tender.RoleVerifier); err != nil {
		return err
	}

	m, tm, err := e.lockMilestone(ctx, milestoneID)
	if err != nil {
		return err
	}
	defer tm.Unlock()

	if m.Status != tender.MilestoneStatusSubmitted {
		return tender.TransitionError("milestone", m.ID, m.Status, "claim review")
	}

	m.Status = tender.MilestoneStatusUnderReview
	m.VerifiedBy = actor.Address
	e.store.StoreMilestone(m)
	return nil
}

// VerifyMilestone records the verifier's quality score and flips the
// milestone to Verified. A score below the threshold is a caller error
// requiring an explicit reject with feedback, never a silent downgrade.
func (e *Engine) VerifyMilestone(ctx context.Context, actor tender.Actor, milestoneID string, qualityScore int) (err error) {
	defer func() { metrics.RecordOperation("verify_milestone", err) }()

	if err = requireRole(actor, tender.RoleVerifier); err != nil {
		return err
	}
	if qualityScore < 0 || qualityScore > 100 {
		return lib.WrapError(tender.ErrValidation, fmt.Errorf("quality score %d outside 0..100", qualityScore))
	}

	m, tm, err := e.lockMilestone(ctx, milestoneID)
	if err != nil {
		return err
	}
	defer tm.Unlock()

	if m.Status != tender.MilestoneStatusSubmitted && m.Status != tender.MilestoneStatusUnderReview {
		return tender.TransitionError("milestone", m.ID, m.Status, "verify")
	}
	if qualityScore < e.cfg.QualityThreshold {
		return lib.WrapError(tender.ErrValidation,
			fmt.Errorf("milestone %s: quality score %d below threshold %d, reject explicitly with feedback",
				m.ID, qualityScore, e.cfg.QualityThreshold))
	}

	m.Status = tender.MilestoneStatusVerified
	m.QualityScore = qualityScore
	m.VerifiedBy = actor.Address
	e.store.StoreMilestone(m)

	e.journal.Add(journal.Entry{
		Operation: "verify_milestone",
		TenderID:  m.TenderID,
		Actor:     actor.Address,
		Detail:    fmt.Sprintf("milestone %d scored %d", m.Sequence, qualityScore),
	})
	e.log.Infof("milestone %d of tender %s verified with score %d", m.Sequence, m.TenderID, qualityScore)
	return nil
}

// RejectMilestone sends a milestone back to the bidder with feedback. The
// bidder may resubmit the same slice.
func (e *Engine) RejectMilestone(ctx context.Context, actor tender.Actor, milestoneID string, reason string) (err error) {
	defer func() { metrics.RecordOperation("reject_milestone", err) }()

	if err = requireRole(actor, tender.RoleVerifier); err != nil {
		return err
	}
	if reason == "" {
		return lib.WrapError(tender.ErrValidation, fmt.Errorf("rejection reason is empty"))
	}

	m, tm, err := e.lockMilestone(ctx, milestoneID)
	if err != nil {
		return err
	}
	defer tm.Unlock()

	if m.Status != tender.MilestoneStatusSubmitted && m.Status != tender.MilestoneStatusUnderReview {
		return tender.TransitionError("milestone", m.ID, m.Status, "reject")
	}

	m.Status = tender.MilestoneStatusRejected
	m.RejectReason = reason
	m.VerifiedBy = actor.Address
	e.store.StoreMilestone(m)

	e.journal.Add(journal.Entry{
		Operation: "reject_milestone",
		TenderID:  m.TenderID,
		Actor:     actor.Address,
		Detail:    fmt.Sprintf("milestone %d: %s", m.Sequence, reason),
	})
	e.log.Infof("milestone %d of tender %s rejected: %s", m.Sequence, m.TenderID, reason)
	return nil
}

// ReleaseMilestoneFunds transfers the milestone's fundAmount from the ledger
// to the bound bidder. Ledger debit, releasedAmount update, status flip and
// paidAt happen as one unit under the tender and project locks; a second
// release of the same milestone fails as invalid-state. Insufficient
// allocated funds is a hard stop, never retried here.
func (e *Engine) ReleaseMilestoneFunds(ctx context.Context, actor tender.Actor, milestoneID string) (amount *big.Int, err error) {
	defer func() { metrics.RecordOperation("release_milestone", err) }()

	if err = requireRole(actor, tender.RoleAdmin); err != nil {
		return nil, err
	}

	m, tm, err := e.lockMilestone(ctx, milestoneID)
	if err != nil {
		return nil, err
	}
	defer tm.Unlock()

	if m.Status != tender.MilestoneStatusVerified {
		return nil, tender.TransitionError("milestone", m.ID, m.Status, "release")
	}

	t, ok := e.store.GetTender(m.TenderID)
	if !ok {
		return nil, lib.WrapError(tender.ErrNotFound, fmt.Errorf("tender %s", m.TenderID))
	}

	pm := e.projectLock(t.ProjectID)
	if err = pm.LockCtx(ctx); err != nil {
		return nil, err
	}
	defer pm.Unlock()

	project, ok := e.store.GetProject(t.ProjectID)
	if !ok {
		return nil, lib.WrapError(tender.ErrNotFound, fmt.Errorf("project %s", t.ProjectID))
	}

	if err = e.ledger.Release(project, t, m.FundAmount); err != nil {
		return nil, err
	}

	m.Status = tender.MilestoneStatusReleased
	m.PaidAt = time.Now()
	e.store.StoreMilestone(m)

	released, _ := new(big.Float).SetInt(m.FundAmount).Float64()
	metrics.ReleasedFunds.Add(released)

	e.journal.Add(journal.Entry{
		Operation: "release_milestone",
		TenderID:  t.ID,
		Actor:     actor.Address,
		Amount:    m.FundAmount,
		Detail:    fmt.Sprintf("milestone %d paid to %s", m.Sequence, lib.AddrShort(t.Bidder.Hex())),
	})

	e.completeIfDone(t)
	return new(big.Int).Set(m.FundAmount), nil
}

// lockMilestone resolves the milestone and acquires its tender's lock. The
// milestone is re-read under the lock so a concurrent release cannot slip
// between the read and the lock.
func (e *Engine) lockMilestone(ctx context.Context, id string) (*tender.Milestone, *lib.Mutex, error) {
	m, ok := e.store.GetMilestone(id)
	if !ok {
		return nil, nil, lib.WrapError(tender.ErrNotFound, fmt.Errorf("milestone %s", id))
	}

	tm := e.tenderLock(m.TenderID)
	if err := tm.LockCtx(ctx); err != nil {
		return nil, nil, err
	}

	m, ok = e.store.GetMilestone(id)
	if !ok {
		tm.Unlock()
		return nil, nil, lib.WrapError(tender.ErrNotFound, fmt.Errorf("milestone %s", id))
	}
	return m, tm, nil
}
