package httphandlers

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gitlab.com/civicworks/tenderengine/internal/journal"
	"gitlab.com/civicworks/tenderengine/internal/tender"
)

// Monetary amounts cross the API as base-10 strings of minor units so the
// JSON layer never degrades them to floats.

type Project struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Budget             string   `json:"budget"`
	AllocatedFunds     string   `json:"allocatedFunds"`
	SpentFunds         string   `json:"spentFunds"`
	Admin              string   `json:"admin"`
	ReviewerCommitment string   `json:"reviewerCommitment,omitempty"`
	Tasks              []string `json:"tasks"`
	Status             string   `json:"status"`
	CreatedAt          string   `json:"createdAt"`
}

type Tender struct {
	ID             string   `json:"id"`
	ProjectID      string   `json:"projectId"`
	Name           string   `json:"name"`
	CommitmentHash string   `json:"commitmentHash"`
	Bidder         string   `json:"bidder,omitempty"` // empty while anonymous
	IsAnonymous    bool     `json:"isAnonymous"`
	Budget         string   `json:"budget"`
	DocumentRefs   []string `json:"documentRefs"`
	Status         string   `json:"status"`
	ReleasedAmount string   `json:"releasedAmount"`
	RejectReason   string   `json:"rejectReason,omitempty"`
	CreatedAt      string   `json:"createdAt"`
}

type Milestone struct {
	ID           string `json:"id"`
	TenderID     string `json:"tenderId"`
	Sequence     int    `json:"sequence"`
	FundAmount   string `json:"fundAmount"`
	ProofRef     string `json:"proofRef"`
	ProofMeta    string `json:"proofMeta,omitempty"`
	Status       string `json:"status"`
	QualityScore int    `json:"qualityScore"`
	VerifiedBy   string `json:"verifiedBy,omitempty"`
	RejectReason string `json:"rejectReason,omitempty"`
	SubmittedAt  string `json:"submittedAt"`
	PaidAt       string `json:"paidAt,omitempty"`
}

type QualityReport struct {
	TenderID    string   `json:"tenderId"`
	Metrics     []int    `json:"metrics"`
	Checklist   []bool   `json:"checklist"`
	ProofRefs   []string `json:"proofRefs"`
	SubmittedAt string   `json:"submittedAt"`
}

type Progress struct {
	Released   string `json:"released"`
	Total      string `json:"total"`
	Percentage int    `json:"percentage"`
}

type JournalEntry struct {
	Operation string `json:"operation"`
	TenderID  string `json:"tenderId,omitempty"`
	Actor     string `json:"actor,omitempty"`
	Amount    string `json:"amount,omitempty"`
	Detail    string `json:"detail,omitempty"`
	Timestamp string `json:"timestamp"`
}

func mapProject(p *tender.Project) Project {
	res := Project{
		ID:             p.ID,
		Name:           p.Name,
		Budget:         p.Budget.String(),
		AllocatedFunds: p.AllocatedFunds.String(),
		SpentFunds:     p.SpentFunds.String(),
		Admin:          p.Admin.Hex(),
		Tasks:          p.Tasks,
		Status:         p.Status.String(),
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
	}
	if p.ReviewerCommitment != (common.Hash{}) {
		res.ReviewerCommitment = p.ReviewerCommitment.Hex()
	}
	return res
}

func mapTender(t *tender.Tender) Tender {
	res := Tender{
		ID:             t.ID,
		ProjectID:      t.ProjectID,
		Name:           t.Name,
		CommitmentHash: t.CommitmentHash.Hex(),
		IsAnonymous:    t.IsAnonymous,
		Budget:         t.Budget.String(),
		DocumentRefs:   t.DocumentRefs,
		Status:         t.Status.String(),
		ReleasedAmount: t.ReleasedAmount.String(),
		RejectReason:   t.RejectReason,
		CreatedAt:      t.CreatedAt.Format(time.RFC3339),
	}
	// the bidder identity leaves the engine only after reveal
	if !t.IsAnonymous {
		res.Bidder = t.Bidder.Hex()
	}
	return res
}

func mapMilestone(m *tender.Milestone) Milestone {
	res := Milestone{
		ID:           m.ID,
		TenderID:     m.TenderID,
		Sequence:     m.Sequence,
		FundAmount:   m.FundAmount.String(),
		ProofRef:     m.ProofRef,
		ProofMeta:    m.ProofMeta,
		Status:       m.Status.String(),
		QualityScore: m.QualityScore,
		RejectReason: m.RejectReason,
		SubmittedAt:  m.SubmittedAt.Format(time.RFC3339),
	}
	if m.VerifiedBy != (common.Address{}) {
		res.VerifiedBy = m.VerifiedBy.Hex()
	}
	if !m.PaidAt.IsZero() {
		res.PaidAt = m.PaidAt.Format(time.RFC3339)
	}
	return res
}

func mapJournalEntry(entry journal.Entry) JournalEntry {
	res := JournalEntry{
		Operation: entry.Operation,
		TenderID:  entry.TenderID,
		Detail:    entry.Detail,
		Timestamp: entry.Timestamp.Format(time.RFC3339),
	}
	if entry.Actor != (common.Address{}) {
		res.Actor = entry.Actor.Hex()
	}
	if entry.Amount != nil {
		res.Amount = entry.Amount.String()
	}
	return res
}

func parseAmount(s string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q, expected base-10 minor units", s)
	}
	return amount, nil
}
