package tender

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/exp/slices"
)

// Project is a public-works project with a fixed budget split into milestone
// task slices. Monetary fields are minor units, never floats.
// Invariant: SpentFunds <= AllocatedFunds <= Budget.
type Project struct {
	ID                 string
	Name               string
	Budget             *big.Int
	AllocatedFunds     *big.Int
	SpentFunds         *big.Int
	Admin              common.Address
	ReviewerCommitment common.Hash // optional, blinds the reviewer identity
	Tasks              []string
	Status             ProjectStatus
	CreatedAt          time.Time
}

func (p *Project) GetID() string {
	return p.ID
}

// Clone returns a deep copy. Readers get clones taken under the project lock
// so they never share mutable state with the stored record.
func (p *Project) Clone() *Project {
	c := *p
	c.Budget = new(big.Int).Set(p.Budget)
	c.AllocatedFunds = new(big.Int).Set(p.AllocatedFunds)
	c.SpentFunds = new(big.Int).Set(p.SpentFunds)
	c.Tasks = slices.Clone(p.Tasks)
	return &c
}

// Tender is a bid against a project, anonymous until the commitment is
// revealed at approval time.
// Invariant: ReleasedAmount <= Budget; CommitmentHash unique across tenders.
type Tender struct {
	ID             string
	ProjectID      string
	Name           string
	CommitmentHash common.Hash
	Bidder         common.Address // zero until revealed
	IsAnonymous    bool
	Budget         *big.Int
	DocumentRefs   []string
	Status         TenderStatus
	ReleasedAmount *big.Int
	RejectReason   string
	CreatedAt      time.Time
}

func (t *Tender) GetID() string {
	return t.ID
}

// Remaining returns Budget - ReleasedAmount.
func (t *Tender) Remaining() *big.Int {
	return new(big.Int).Sub(t.Budget, t.ReleasedAmount)
}

// Clone returns a deep copy taken under the tender lock by readers.
func (t *Tender) Clone() *Tender {
	c := *t
	c.Budget = new(big.Int).Set(t.Budget)
	c.ReleasedAmount = new(big.Int).Set(t.ReleasedAmount)
	c.DocumentRefs = slices.Clone(t.DocumentRefs)
	return &c
}

// Milestone is an independently verifiable and payable slice of a tender.
// Proof references are opaque to the engine and never fetched.
type Milestone struct {
	ID           string
	TenderID     string
	Sequence     int
	FundAmount   *big.Int
	ProofRef     string
	ProofMeta    string // geolocation or other metadata, opaque
	Status       MilestoneStatus
	QualityScore int
	VerifiedBy   common.Address
	RejectReason string
	SubmittedAt  time.Time
	PaidAt       time.Time
}

func (m *Milestone) GetID() string {
	return m.ID
}

// Clone returns a deep copy taken under the owning tender's lock by readers.
func (m *Milestone) Clone() *Milestone {
	c := *m
	c.FundAmount = new(big.Int).Set(m.FundAmount)
	return &c
}

// QualityReport closes out a completed tender and restores the bidder's
// eligibility. Immutable once submitted.
type QualityReport struct {
	TenderID    string
	ProofRefs   []string
	Metrics     []int  // five 0-100 quality metrics
	Checklist   []bool // five compliance items
	SubmittedAt time.Time
}

func (r *QualityReport) GetID() string {
	return r.TenderID
}

// Progress is the UI-facing completion summary of a tender.
type Progress struct {
	Released   *big.Int
	Total      *big.Int
	Percentage int
}
