package routing

import (
	"hookrelay/internal/engine/registry"
	"hookrelay/internal/platform/repositories"
)

// ProjectResolver walks the relationship from a triggering entity to its
// owning project, one explicit traversal per entity kind.
type ProjectResolver struct {
	entities *repositories.EntityRepository
}

func NewProjectResolver(entities *repositories.EntityRepository) *ProjectResolver {
	return &ProjectResolver{entities: entities}
}

// ResolveProjectOf returns the id of the project owning the entity, or nil
// when the action's scope does not attribute it to one.
func (r *ProjectResolver) ResolveProjectOf(scope registry.ScopePath, entityID string) (*string, error) {
	switch scope {
	case registry.ScopeSelf:
		// The entity is the project.
		return &entityID, nil
	case registry.ScopeProject:
		projectID, err := r.entities.ProjectOfTask(entityID)
		if err != nil || projectID == "" {
			return nil, err
		}
		return &projectID, nil
	case registry.ScopeTaskProject:
		projectID, err := r.entities.ProjectOfAnnotation(entityID)
		if err != nil || projectID == "" {
			return nil, err
		}
		return &projectID, nil
	default:
		return nil, nil
	}
}
