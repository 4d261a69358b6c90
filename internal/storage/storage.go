package storage

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"gitlab.com/civicworks/tenderengine/internal/lib"
	"gitlab.com/civicworks/tenderengine/internal/tender"
	"golang.org/x/exp/slices"
)

// Storage keeps the four record collections plus the commitment uniqueness
// index. It is a plain in-memory store; all invariant enforcement lives in the
// engine, which serializes writes per tender and per project.
type Storage struct {
	projects   *lib.Collection[*tender.Project]
	tenders    *lib.Collection[*tender.Tender]
	milestones *lib.Collection[*tender.Milestone]
	reports    *lib.Collection[*tender.QualityReport]

	commitments sync.Map // common.Hash -> tender id
}

func NewStorage() *Storage {
	return &Storage{
		projects:   lib.NewCollection[*tender.Project](),
		tenders:    lib.NewCollection[*tender.Tender](),
		milestones: lib.NewCollection[*tender.Milestone](),
		reports:    lib.NewCollection[*tender.QualityReport](),
	}
}

func (s *Storage) StoreProject(p *tender.Project) {
	s.projects.Store(p)
}

func (s *Storage) GetProject(id string) (*tender.Project, bool) {
	return s.projects.Load(id)
}

func (s *Storage) RangeProjects(f func(p *tender.Project) bool) {
	s.projects.Range(f)
}

// RegisterCommitment claims the commitment hash for the given tender id.
// Returns false if the hash is already claimed, implementing the replay
// protection for duplicate bids.
func (s *Storage) RegisterCommitment(hash common.Hash, tenderID string) bool {
	_, loaded := s.commitments.LoadOrStore(hash, tenderID)
	return !loaded
}

func (s *Storage) UnregisterCommitment(hash common.Hash) {
	s.commitments.Delete(hash)
}

func (s *Storage) TenderByCommitment(hash common.Hash) (*tender.Tender, bool) {
	id, ok := s.commitments.Load(hash)
	if !ok {
		return nil, false
	}
	return s.tenders.Load(id.(string))
}

func (s *Storage) StoreTender(t *tender.Tender) {
	s.tenders.Store(t)
}

func (s *Storage) GetTender(id string) (*tender.Tender, bool) {
	return s.tenders.Load(id)
}

func (s *Storage) TendersByProject(projectID string) []*tender.Tender {
	var res []*tender.Tender
	s.tenders.Range(func(t *tender.Tender) bool {
		if t.ProjectID == projectID {
			res = append(res, t)
		}
		return true
	})
	slices.SortStableFunc(res, func(a, b *tender.Tender) bool {
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return res
}

// TendersByBidder returns revealed tenders bound to the given bidder.
func (s *Storage) TendersByBidder(bidder common.Address) []*tender.Tender {
	var res []*tender.Tender
	s.tenders.Range(func(t *tender.Tender) bool {
		if !t.IsAnonymous && t.Bidder == bidder {
			res = append(res, t)
		}
		return true
	})
	return res
}

func (s *Storage) StoreMilestone(m *tender.Milestone) {
	s.milestones.Store(m)
}

func (s *Storage) GetMilestone(id string) (*tender.Milestone, bool) {
	return s.milestones.Load(id)
}

// MilestonesByTender returns the tender's milestones ordered by sequence.
func (s *Storage) MilestonesByTender(tenderID string) []*tender.Milestone {
	var res []*tender.Milestone
	s.milestones.Range(func(m *tender.Milestone) bool {
		if m.TenderID == tenderID {
			res = append(res, m)
		}
		return true
	})
	slices.SortStableFunc(res, func(a, b *tender.Milestone) bool {
		return a.Sequence < b.Sequence
	})
	return res
}

func (s *Storage) MilestoneBySequence(tenderID string, sequence int) (*tender.Milestone, bool) {
	var found *tender.Milestone
	s.milestones.Range(func(m *tender.Milestone) bool {
		if m.TenderID == tenderID && m.Sequence == sequence {
			found = m
			return false
		}
		return true
	})
	return found, found != nil
}

func (s *Storage) StoreReport(r *tender.QualityReport) {
	s.reports.Store(r)
}

func (s *Storage) GetReport(tenderID string) (*tender.QualityReport, bool) {
	return s.reports.Load(tenderID)
}
