package registry

import (
	"errors"
	"testing"

	pkgerrors "hookrelay/internal/pkg/errors"
)

func TestLookup_RegisteredActions(t *testing.T) {
	tests := []struct {
		id         ActionID
		payloadKey string
		isMulti    bool
		orgOnly    bool
		scope      ScopePath
	}{
		{ProjectCreated, "project", false, true, ScopeNone},
		{ProjectUpdated, "project", false, false, ScopeSelf},
		{ProjectDeleted, "project", false, true, ScopeNone},
		{TasksCreated, "tasks", true, false, ScopeProject},
		{TasksDeleted, "tasks", true, false, ScopeProject},
		{AnnotationCreated, "annotation", false, false, ScopeTaskProject},
		{AnnotationUpdated, "annotation", false, false, ScopeTaskProject},
		{AnnotationsDeleted, "annotations", true, false, ScopeTaskProject},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			desc, err := Lookup(tt.id)
			if err != nil {
				t.Fatalf("Lookup(%s) failed: %v", tt.id, err)
			}
			if desc.PayloadKey != tt.payloadKey {
				t.Errorf("Expected payload key %s, got %s", tt.payloadKey, desc.PayloadKey)
			}
			if desc.IsMulti != tt.isMulti {
				t.Errorf("Expected is_multi %v, got %v", tt.isMulti, desc.IsMulti)
			}
			if desc.OrganizationOnly != tt.orgOnly {
				t.Errorf("Expected organization_only %v, got %v", tt.orgOnly, desc.OrganizationOnly)
			}
			if desc.Scope != tt.scope {
				t.Errorf("Expected scope %q, got %q", tt.scope, desc.Scope)
			}
		})
	}
}

func TestLookup_UnknownAction(t *testing.T) {
	_, err := Lookup("TASKS_EXPLODED")
	if err == nil {
		t.Fatal("Expected error for unregistered action")
	}
	if !errors.Is(err, pkgerrors.ErrUnknownAction) {
		t.Errorf("Expected ErrUnknownAction, got %v", err)
	}
}

func TestAllIDs_SortedAndComplete(t *testing.T) {
	ids := AllIDs()
	if len(ids) != 8 {
		t.Fatalf("Expected 8 actions, got %d", len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Errorf("IDs not sorted: %s before %s", ids[i-1], ids[i])
		}
	}
	for _, id := range ids {
		if !IsRegistered(id) {
			t.Errorf("AllIDs returned unregistered id %s", id)
		}
	}
}

func TestOrganizationOnlyActionsHaveNoScope(t *testing.T) {
	for _, desc := range All() {
		if desc.OrganizationOnly && desc.Scope != ScopeNone {
			t.Errorf("%s is organization-only but carries scope %q", desc.ID, desc.Scope)
		}
	}
}
