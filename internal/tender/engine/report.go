package engine

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/civicworks/tenderengine/internal/journal"
	"gitlab.com/civicworks/tenderengine/internal/lib"
	"gitlab.com/civicworks/tenderengine/internal/metrics"
	"gitlab.com/civicworks/tenderengine/internal/tender"
	"golang.org/x/exp/slices"
)

// SubmitQualityReport files the final quality report for a completed tender
// and restores the bidder's eligibility. The report is immutable; a second
// submission is an invalid-state error.
func (e *Engine) SubmitQualityReport(ctx context.Context, actor tender.Actor, tenderID string, qualityMetrics []int, checklist []bool, proofRefs []string) (err error) {
	defer func() { metrics.RecordOperation("submit_quality_report", err) }()

	t, tm, err := e.lockTender(ctx, tenderID)
	if err != nil {
		return err
	}
	defer tm.Unlock()

	if err = requireBoundBidder(actor, t); err != nil {
		return err
	}
	if t.Status != tender.TenderStatusCompleted {
		return lib.WrapError(tender.ErrInvalidState,
			fmt.Errorf("tender %s not complete: status %s", t.ID, t.Status))
	}

	if len(qualityMetrics) != e.cfg.MilestoneSlices {
		return lib.WrapError(tender.ErrValidation,
			fmt.Errorf("expected %d quality metrics, got %d", e.cfg.MilestoneSlices, len(qualityMetrics)))
	}
	for i, metric := range qualityMetrics {
		if metric < 0 || metric > 100 {
			return lib.WrapError(tender.ErrValidation,
				fmt.Errorf("quality metric %d is %d, outside 0..100", i+1, metric))
		}
	}
	if len(checklist) != e.cfg.MilestoneSlices {
		return lib.WrapError(tender.ErrValidation,
			fmt.Errorf("expected %d compliance checklist items, got %d", e.cfg.MilestoneSlices, len(checklist)))
	}

	if _, exists := e.store.GetReport(t.ID); exists {
		return tender.TransitionError("tender", t.ID, t.Status, "submit a second quality report")
	}

	e.store.StoreReport(&tender.QualityReport{
		TenderID:    t.ID,
		ProofRefs:   slices.Clone(proofRefs),
		Metrics:     slices.Clone(qualityMetrics),
		Checklist:   slices.Clone(checklist),
		SubmittedAt: time.Now(),
	})
	e.gate.Clear(t.Bidder, t.ID)

	e.journal.Add(journal.Entry{
		Operation: "submit_quality_report",
		TenderID:  t.ID,
		Actor:     actor.Address,
	})
	e.log.Infof("quality report filed for tender %s, bidder %s eligible again", t.ID, lib.AddrShort(t.Bidder.Hex()))
	return nil
}
