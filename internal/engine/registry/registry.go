package registry

import (
	"fmt"
	"sort"

	"hookrelay/internal/pkg/errors"
)

// ActionID identifies a catalogued domain event eligible for webhook delivery.
type ActionID string

const (
	ProjectCreated ActionID = "PROJECT_CREATED"
	ProjectUpdated ActionID = "PROJECT_UPDATED"
	ProjectDeleted ActionID = "PROJECT_DELETED"

	TasksCreated ActionID = "TASKS_CREATED"
	TasksDeleted ActionID = "TASKS_DELETED"

	AnnotationCreated  ActionID = "ANNOTATION_CREATED"
	AnnotationUpdated  ActionID = "ANNOTATION_UPDATED"
	AnnotationsDeleted ActionID = "ANNOTATIONS_DELETED"
)

type EntityKind string

const (
	EntityProject    EntityKind = "project"
	EntityTask       EntityKind = "task"
	EntityAnnotation EntityKind = "annotation"
)

// SerializerVariant selects the payload-shaping strategy the delivery layer
// applies to matched entities.
type SerializerVariant string

const (
	SerializeFull   SerializerVariant = "full"
	SerializeIDOnly SerializerVariant = "id_only"
)

// ScopePath is the relationship traversal from the triggering entity to its
// owning project. An action with ScopeNone cannot be attributed to a project.
type ScopePath string

const (
	ScopeNone        ScopePath = ""
	ScopeSelf        ScopePath = "self"
	ScopeProject     ScopePath = "project"
	ScopeTaskProject ScopePath = "task.project"
)

type Descriptor struct {
	ID               ActionID          `json:"id"`
	Name             string            `json:"name"`
	PayloadKey       string            `json:"payload_key"`
	IsMulti          bool              `json:"is_multi"`
	Entity           EntityKind        `json:"entity"`
	Serializer       SerializerVariant `json:"serializer"`
	Scope            ScopePath         `json:"-"`
	OrganizationOnly bool              `json:"organization_only"`
}

// actions is defined once and never mutated after init.
var actions = map[ActionID]Descriptor{
	ProjectCreated: {
		ID:               ProjectCreated,
		Name:             "Project created",
		PayloadKey:       "project",
		Entity:           EntityProject,
		Serializer:       SerializeFull,
		OrganizationOnly: true,
	},
	ProjectUpdated: {
		ID:         ProjectUpdated,
		Name:       "Project updated",
		PayloadKey: "project",
		Entity:     EntityProject,
		Serializer: SerializeFull,
		Scope:      ScopeSelf,
	},
	ProjectDeleted: {
		ID:               ProjectDeleted,
		Name:             "Project deleted",
		PayloadKey:       "project",
		Entity:           EntityProject,
		Serializer:       SerializeIDOnly,
		OrganizationOnly: true,
	},
	TasksCreated: {
		ID:         TasksCreated,
		Name:       "Task created",
		PayloadKey: "tasks",
		IsMulti:    true,
		Entity:     EntityTask,
		Serializer: SerializeFull,
		Scope:      ScopeProject,
	},
	TasksDeleted: {
		ID:         TasksDeleted,
		Name:       "Task deleted",
		PayloadKey: "tasks",
		IsMulti:    true,
		Entity:     EntityTask,
		Serializer: SerializeIDOnly,
		Scope:      ScopeProject,
	},
	AnnotationCreated: {
		ID:         AnnotationCreated,
		Name:       "Annotation created",
		PayloadKey: "annotation",
		Entity:     EntityAnnotation,
		Serializer: SerializeFull,
		Scope:      ScopeTaskProject,
	},
	AnnotationUpdated: {
		ID:         AnnotationUpdated,
		Name:       "Annotation updated",
		PayloadKey: "annotation",
		Entity:     EntityAnnotation,
		Serializer: SerializeFull,
		Scope:      ScopeTaskProject,
	},
	AnnotationsDeleted: {
		ID:         AnnotationsDeleted,
		Name:       "Annotation deleted",
		PayloadKey: "annotations",
		IsMulti:    true,
		Entity:     EntityAnnotation,
		Serializer: SerializeIDOnly,
		Scope:      ScopeTaskProject,
	},
}

// Lookup resolves an action id against the catalog.
func Lookup(id ActionID) (Descriptor, error) {
	desc, ok := actions[id]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", errors.ErrUnknownAction, id)
	}
	return desc, nil
}

func IsRegistered(id ActionID) bool {
	_, ok := actions[id]
	return ok
}

// AllIDs returns every registered action id in lexical order.
func AllIDs() []ActionID {
	ids := make([]ActionID, 0, len(actions))
	for id := range actions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// All returns the full catalog in lexical id order, for enumeration surfaces.
func All() []Descriptor {
	ids := AllIDs()
	descs := make([]Descriptor, 0, len(ids))
	for _, id := range ids {
		descs = append(descs, actions[id])
	}
	return descs
}
