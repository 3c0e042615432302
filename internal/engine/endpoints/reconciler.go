package endpoints

import (
	"fmt"
	"sort"
	"sync"

	"hookrelay/internal/engine/registry"
	"hookrelay/internal/pkg/errors"
	"hookrelay/internal/platform/models"
	"hookrelay/internal/platform/repositories"
)

// Reconciler is the only writer of subscription rows. It diffs the desired
// action set against the stored one and applies the minimal change in a
// single transaction, serialized per endpoint.
type Reconciler struct {
	repo *repositories.EndpointRepository

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewReconciler(repo *repositories.EndpointRepository) *Reconciler {
	return &Reconciler{
		repo:  repo,
		locks: make(map[string]*sync.Mutex),
	}
}

func (r *Reconciler) lockFor(endpointID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, exists := r.locks[endpointID]
	if !exists {
		lock = &sync.Mutex{}
		r.locks[endpointID] = lock
	}
	return lock
}

// SetActions makes the endpoint's stored subscription set equal to desired.
// Unknown ids and scope violations abort before any row is touched; calling
// twice with the same set is a no-op the second time.
func (r *Reconciler) SetActions(endpoint *models.Endpoint, desired []string) error {
	desiredSet := make(map[string]bool, len(desired))
	for _, action := range desired {
		desiredSet[action] = true
	}

	// Validation happens before the endpoint lock is taken, so a rejected
	// request never holds up a concurrent valid one.
	for action := range desiredSet {
		desc, err := registry.Lookup(registry.ActionID(action))
		if err != nil {
			return err
		}
		if endpoint.ProjectID != nil && desc.OrganizationOnly {
			return fmt.Errorf("%w: %s", errors.ErrScopeViolation, action)
		}
	}

	lock := r.lockFor(endpoint.ID)
	lock.Lock()
	defer lock.Unlock()

	current, err := r.repo.ListActionIDs(endpoint.ID)
	if err != nil {
		return err
	}

	toAdd, toRemove := diff(desiredSet, current)
	if len(toAdd) == 0 && len(toRemove) == 0 {
		return nil
	}

	tx, err := r.repo.BeginTx()
	if err != nil {
		return err
	}
	if err := r.repo.ApplySubscriptionDiffTx(tx, endpoint.ID, toAdd, toRemove); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ListActions returns the endpoint's current subscription set in lexical order.
func (r *Reconciler) ListActions(endpointID string) ([]string, error) {
	current, err := r.repo.ListActionIDs(endpointID)
	if err != nil {
		return nil, err
	}
	actions := make([]string, 0, len(current))
	for action := range current {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	return actions, nil
}

func diff(desired, current map[string]bool) (toAdd, toRemove []string) {
	for action := range desired {
		if !current[action] {
			toAdd = append(toAdd, action)
		}
	}
	for action := range current {
		if !desired[action] {
			toRemove = append(toRemove, action)
		}
	}
	sort.Strings(toAdd)
	sort.Strings(toRemove)
	return toAdd, toRemove
}
