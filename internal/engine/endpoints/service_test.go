package endpoints

import (
	"errors"
	"testing"

	pkgerrors "hookrelay/internal/pkg/errors"
	"hookrelay/internal/platform/repositories"
)

func TestService_CreateDefaults(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := repositories.NewEndpointRepository(db)
	svc := NewService(repo, repositories.NewOrganizationRepository(db))

	endpoint, err := svc.Create(CreateInput{
		OrganizationID: "org_1",
		URL:            "https://example.com/hook",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !endpoint.SendPayload || !endpoint.SendForAllActions || !endpoint.IsActive {
		t.Errorf("Expected send_payload, send_for_all_actions and is_active to default true, got %+v", endpoint)
	}
	if endpoint.Headers == nil {
		t.Error("Expected headers to default to an empty map")
	}
	if endpoint.ProjectID != nil {
		t.Error("Expected an organization-scoped endpoint by default")
	}
}

func TestService_CreateRejectsInvalidInput(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := repositories.NewEndpointRepository(db)
	svc := NewService(repo, repositories.NewOrganizationRepository(db))

	tests := []struct {
		name  string
		input CreateInput
	}{
		{"Bad URL", CreateInput{OrganizationID: "org_1", URL: "not a url"}},
		{"Bad Headers", CreateInput{
			OrganizationID: "org_1",
			URL:            "https://example.com/hook",
			Headers:        map[string]string{"bad key!": "v"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(tt.input); !pkgerrors.IsValidation(err) {
				t.Errorf("Expected a ValidationError, got %v", err)
			}
		})
	}

	// Nothing persisted for rejected input.
	list, _ := svc.List("org_1")
	if len(list) != 0 {
		t.Errorf("Expected no endpoints persisted, got %d", len(list))
	}
}

func TestService_UpdateAndDeactivate(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := repositories.NewEndpointRepository(db)
	svc := NewService(repo, repositories.NewOrganizationRepository(db))

	endpoint, err := svc.Create(CreateInput{OrganizationID: "org_1", URL: "https://example.com/hook"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	off := false
	updated, err := svc.Update(endpoint.ID, UpdateInput{
		URL:         "https://example.com/v2",
		SendPayload: &off,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.URL != "https://example.com/v2" || updated.SendPayload {
		t.Errorf("Update not applied: %+v", updated)
	}

	if err := svc.Deactivate(endpoint.ID); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}
	fetched, _ := svc.Get(endpoint.ID)
	if fetched.IsActive {
		t.Error("Expected endpoint deactivated")
	}
}

func TestService_GetMissing(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := repositories.NewEndpointRepository(db)
	svc := NewService(repo, repositories.NewOrganizationRepository(db))

	_, err := svc.Get("ep_missing")
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestService_HasPermission(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := db.Exec(`
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			organization_id TEXT NOT NULL,
			email TEXT,
			password_hash TEXT,
			full_name TEXT,
			role TEXT,
			created_at INTEGER,
			updated_at INTEGER,
			deleted_at INTEGER
		);
		INSERT INTO users (id, organization_id) VALUES ('user_1', 'org_1');
		INSERT INTO users (id, organization_id) VALUES ('user_2', 'org_2');
	`); err != nil {
		t.Fatalf("Failed to seed users: %v", err)
	}

	repo := repositories.NewEndpointRepository(db)
	svc := NewService(repo, repositories.NewOrganizationRepository(db))

	endpoint, err := svc.Create(CreateInput{OrganizationID: "org_1", URL: "https://example.com/hook"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	ok, err := svc.HasPermission("user_1", endpoint)
	if err != nil || !ok {
		t.Errorf("Expected member to have permission, got ok=%v err=%v", ok, err)
	}

	ok, err = svc.HasPermission("user_2", endpoint)
	if err != nil || ok {
		t.Errorf("Expected non-member to be denied, got ok=%v err=%v", ok, err)
	}
}
