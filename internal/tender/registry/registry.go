package registry

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"gitlab.com/civicworks/tenderengine/internal/interfaces"
	"gitlab.com/civicworks/tenderengine/internal/lib"
	"gitlab.com/civicworks/tenderengine/internal/storage"
	"gitlab.com/civicworks/tenderengine/internal/tender"
)

// Registry stores one-way commitments binding a hidden bidder identity to a
// bid and verifies reveal proofs. The reviewer evaluates the bid with zero
// knowledge of its author; authorship is proven cryptographically at approval
// time.
type Registry struct {
	store *storage.Storage
	log   interfaces.ILogger
}

func NewRegistry(store *storage.Storage, log interfaces.ILogger) *Registry {
	return &Registry{
		store: store,
		log:   log,
	}
}

// SubmitPayload is the bid data accompanying a commitment.
type SubmitPayload struct {
	ProjectID    string
	Name         string
	Budget       *big.Int
	DocumentRefs []string
}

// CommitmentHash computes the canonical commitment for an identity and a
// secret nonce: keccak256(identity || nonce).
func CommitmentHash(identity common.Address, nonce string) common.Hash {
	return crypto.Keccak256Hash(identity.Bytes(), []byte(nonce))
}

// Submit registers the commitment and creates the tender in Submitted status
// with no bound identity. A duplicate commitment hash is a hard rejection.
func (r *Registry) Submit(commitment common.Hash, payload SubmitPayload) (*tender.Tender, error) {
	if payload.Name == "" {
		return nil, lib.WrapError(tender.ErrValidation, fmt.Errorf("tender name is empty"))
	}
	if payload.Budget == nil || payload.Budget.Sign() <= 0 {
		return nil, lib.WrapError(tender.ErrValidation, fmt.Errorf("tender budget must be positive"))
	}

	project, ok := r.store.GetProject(payload.ProjectID)
	if !ok {
		return nil, lib.WrapError(tender.ErrNotFound, fmt.Errorf("project %s", payload.ProjectID))
	}
	if payload.Budget.Cmp(project.Budget) > 0 {
		return nil, lib.WrapError(tender.ErrBudgetExceeded,
			fmt.Errorf("tender budget %s exceeds project budget %s", payload.Budget, project.Budget))
	}

	t := &tender.Tender{
		ID:             uuid.NewString(),
		ProjectID:      payload.ProjectID,
		Name:           payload.Name,
		CommitmentHash: commitment,
		IsAnonymous:    true,
		Budget:         new(big.Int).Set(payload.Budget),
		DocumentRefs:   payload.DocumentRefs,
		Status:         tender.TenderStatusSubmitted,
		ReleasedAmount: big.NewInt(0),
		CreatedAt:      time.Now(),
	}

	if !r.store.RegisterCommitment(commitment, t.ID) {
		return nil, lib.WrapError(tender.ErrDuplicateCommitment, fmt.Errorf("commitment %s", commitment.Hex()))
	}
	r.store.StoreTender(t)

	r.log.Infof("tender %s submitted against project %s, commitment %s", t.ID, payload.ProjectID, lib.AddrShort(commitment.Hex()))
	return t, nil
}

// Verify recomputes the commitment from the claimed identity and nonce and
// compares it to the tender's stored commitment. It has no side effects.
func (r *Registry) Verify(t *tender.Tender, claimed common.Address, nonce string) error {
	if CommitmentHash(claimed, nonce) != t.CommitmentHash {
		return lib.WrapError(tender.ErrAuthorization,
			fmt.Errorf("reveal proof mismatch for tender %s", t.ID))
	}
	return nil
}

// Bind records a successfully revealed identity and clears anonymity. The
// caller must have passed Verify first; binding is final.
func (r *Registry) Bind(t *tender.Tender, identity common.Address) {
	t.Bidder = identity
	t.IsAnonymous = false
	r.store.StoreTender(t)
	r.log.Infof("tender %s bound to bidder %s", t.ID, lib.AddrShort(identity.Hex()))
}
