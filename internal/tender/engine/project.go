package engine

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"gitlab.com/civicworks/tenderengine/internal/journal"
	"gitlab.com/civicworks/tenderengine/internal/lib"
	"gitlab.com/civicworks/tenderengine/internal/metrics"
	"gitlab.com/civicworks/tenderengine/internal/tender"
	"golang.org/x/exp/slices"
)

// CreateProject registers a public-works project with a fixed budget and one
// task description per milestone slice. ReviewerCommitment optionally blinds
// the designated reviewer; it is stored, not enforced.
func (e *Engine) CreateProject(actor tender.Actor, name string, budget *big.Int, tasks []string, reviewerCommitment common.Hash) (*tender.Project, error) {
	err := e.createProject(actor, name, budget, tasks, reviewerCommitment)
	metrics.RecordOperation("create_project", err)
	if err != nil {
		return nil, err
	}

	p := &tender.Project{
		ID:                 uuid.NewString(),
		Name:               name,
		Budget:             new(big.Int).Set(budget),
		AllocatedFunds:     big.NewInt(0),
		SpentFunds:         big.NewInt(0),
		Admin:              actor.Address,
		ReviewerCommitment: reviewerCommitment,
		Tasks:              slices.Clone(tasks),
		Status:             tender.ProjectStatusCreated,
		CreatedAt:          time.Now(),
	}
	e.store.StoreProject(p)

	e.journal.Add(journal.Entry{
		Operation: "create_project",
		Actor:     actor.Address,
		Amount:    p.Budget,
		Detail:    fmt.Sprintf("project %s (%s)", p.ID, name),
	})
	e.log.Infof("project %s created by admin %s, budget %s", p.ID, lib.AddrShort(actor.Address.Hex()), budget)
	return p.Clone(), nil
}

func (e *Engine) createProject(actor tender.Actor, name string, budget *big.Int, tasks []string, _ common.Hash) error {
	if err := requireRole(actor, tender.RoleAdmin); err != nil {
		return err
	}
	if name == "" {
		return lib.WrapError(tender.ErrValidation, fmt.Errorf("project name is empty"))
	}
	if budget == nil || budget.Sign() <= 0 {
		return lib.WrapError(tender.ErrValidation, fmt.Errorf("project budget must be positive"))
	}
	if len(tasks) != e.cfg.MilestoneSlices {
		return lib.WrapError(tender.ErrValidation,
			fmt.Errorf("expected %d task descriptions, got %d", e.cfg.MilestoneSlices, len(tasks)))
	}
	for i, task := range tasks {
		if task == "" {
			return lib.WrapError(tender.ErrValidation, fmt.Errorf("task description %d is empty", i+1))
		}
	}
	return nil
}

func (e *Engine) GetProject(ctx context.Context, id string) (*tender.Project, error) {
	m := e.projectLock(id)
	if err := m.LockCtx(ctx); err != nil {
		return nil, err
	}
	defer m.Unlock()

	p, ok := e.store.GetProject(id)
	if !ok {
		return nil, lib.WrapError(tender.ErrNotFound, fmt.Errorf("project %s", id))
	}
	return p.Clone(), nil
}

func (e *Engine) ListProjects(ctx context.Context) ([]*tender.Project, error) {
	var res []*tender.Project
	var lockErr error
	e.store.RangeProjects(func(p *tender.Project) bool {
		m := e.projectLock(p.ID)
		if err := m.LockCtx(ctx); err != nil {
			lockErr = err
			return false
		}
		res = append(res, p.Clone())
		m.Unlock()
		return true
	})
	if lockErr != nil {
		return nil, lockErr
	}
	slices.SortStableFunc(res, func(a, b *tender.Project) bool {
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return res, nil
}
