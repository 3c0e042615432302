package routing

import (
	"sort"

	"hookrelay/internal/engine/registry"
	"hookrelay/internal/platform/models"
	"hookrelay/internal/platform/repositories"
)

// Event describes one domain event to route. ProjectID may be nil; when the
// action is project-scoped and EntityIDs is non-empty, the matcher resolves
// the owning project from the first entity.
type Event struct {
	ActionID       registry.ActionID `json:"action"`
	OrganizationID string            `json:"organization_id"`
	ProjectID      *string           `json:"project_id,omitempty"`
	EntityIDs      []string          `json:"entity_ids,omitempty"`
	Data           interface{}       `json:"data,omitempty"`
}

// Match pairs a notified endpoint with the payload metadata the delivery
// layer needs to shape its request.
type Match struct {
	Endpoint *models.Endpoint
	Action   registry.Descriptor
}

// Matcher selects the endpoints to notify for an event. It is a pure query:
// no state is mutated and an empty result is not an error.
type Matcher struct {
	repo     *repositories.EndpointRepository
	resolver *ProjectResolver
}

func NewMatcher(repo *repositories.EndpointRepository, resolver *ProjectResolver) *Matcher {
	return &Matcher{repo: repo, resolver: resolver}
}

func (m *Matcher) Match(event Event) ([]Match, error) {
	desc, err := registry.Lookup(event.ActionID)
	if err != nil {
		return nil, err
	}

	projectID := event.ProjectID
	if projectID == nil && desc.Scope != registry.ScopeNone && m.resolver != nil && len(event.EntityIDs) > 0 {
		projectID, err = m.resolver.ResolveProjectOf(desc.Scope, event.EntityIDs[0])
		if err != nil {
			return nil, err
		}
	}

	candidates, err := m.repo.ListActiveByOrg(event.OrganizationID)
	if err != nil {
		return nil, err
	}

	var subscribed map[string]bool
	var matches []Match
	for _, endpoint := range candidates {
		if endpoint.ProjectID != nil {
			// The subscription-time scope invariant, re-checked here:
			// project webhooks never receive organization-only actions,
			// send_for_all_actions notwithstanding.
			if desc.OrganizationOnly {
				continue
			}
			if projectID == nil || *endpoint.ProjectID != *projectID {
				continue
			}
		}

		if !endpoint.SendForAllActions {
			if subscribed == nil {
				subscribed, err = m.repo.SubscribedEndpointIDs(event.OrganizationID, string(event.ActionID))
				if err != nil {
					return nil, err
				}
			}
			if !subscribed[endpoint.ID] {
				continue
			}
		}

		matches = append(matches, Match{Endpoint: endpoint, Action: desc})
	}

	// ListActiveByOrg already orders by id; keep the guarantee local so a
	// different endpoint source cannot break fan-out determinism.
	sort.Slice(matches, func(i, j int) bool { return matches[i].Endpoint.ID < matches[j].Endpoint.ID })

	return matches, nil
}
