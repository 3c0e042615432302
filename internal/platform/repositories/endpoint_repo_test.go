package repositories

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"hookrelay/internal/platform/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	query := `
	CREATE TABLE endpoints (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		project_id TEXT,
		url TEXT NOT NULL,
		send_payload INTEGER NOT NULL DEFAULT 1,
		send_for_all_actions INTEGER NOT NULL DEFAULT 1,
		headers TEXT NOT NULL DEFAULT '{}',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE subscriptions (
		endpoint_id TEXT NOT NULL REFERENCES endpoints(id) ON DELETE CASCADE,
		action_id TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		UNIQUE(endpoint_id, action_id)
	);
	`
	if _, err := db.Exec(query); err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}
	return db
}

func TestEndpointRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewEndpointRepository(db)

	projectID := "proj_1"
	endpoint := &models.Endpoint{
		OrganizationID:    "org_1",
		ProjectID:         &projectID,
		URL:               "https://example.com/hook",
		SendPayload:       true,
		SendForAllActions: false,
		Headers:           map[string]string{"X-Api-Key": "secret"},
		IsActive:          true,
	}

	if err := repo.Create(endpoint); err != nil {
		t.Fatalf("Failed to create endpoint: %v", err)
	}
	if endpoint.ID == "" || endpoint.CreatedAt == 0 {
		t.Error("Expected id and timestamps to be assigned")
	}

	fetched, err := repo.GetByID(endpoint.ID)
	if err != nil {
		t.Fatalf("Failed to get endpoint: %v", err)
	}
	if fetched == nil {
		t.Fatal("Expected endpoint, got nil")
	}
	if fetched.ProjectID == nil || *fetched.ProjectID != "proj_1" {
		t.Errorf("Expected project_id proj_1, got %v", fetched.ProjectID)
	}
	if fetched.Headers["X-Api-Key"] != "secret" {
		t.Errorf("Expected headers to round-trip, got %v", fetched.Headers)
	}
	if fetched.SendForAllActions {
		t.Error("Expected send_for_all_actions false")
	}
}

func TestEndpointRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewEndpointRepository(db)
	fetched, err := repo.GetByID("ep_missing")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if fetched != nil {
		t.Error("Expected nil for missing endpoint")
	}
}

func TestEndpointRepository_UpdateDoesNotTouchProject(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewEndpointRepository(db)

	projectID := "proj_1"
	endpoint := &models.Endpoint{
		OrganizationID: "org_1",
		ProjectID:      &projectID,
		URL:            "https://example.com/hook",
		Headers:        map[string]string{},
		IsActive:       true,
	}
	if err := repo.Create(endpoint); err != nil {
		t.Fatalf("Failed to create endpoint: %v", err)
	}

	other := "proj_2"
	endpoint.ProjectID = &other
	endpoint.URL = "https://example.com/hook2"
	if err := repo.Update(endpoint); err != nil {
		t.Fatalf("Failed to update endpoint: %v", err)
	}

	fetched, _ := repo.GetByID(endpoint.ID)
	if fetched.URL != "https://example.com/hook2" {
		t.Errorf("Expected url updated, got %s", fetched.URL)
	}
	if fetched.ProjectID == nil || *fetched.ProjectID != "proj_1" {
		t.Errorf("Expected project_id untouched by update, got %v", fetched.ProjectID)
	}
}

func TestEndpointRepository_DeleteCascadesSubscriptions(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewEndpointRepository(db)

	endpoint := &models.Endpoint{
		OrganizationID: "org_1",
		URL:            "https://example.com/hook",
		Headers:        map[string]string{},
		IsActive:       true,
	}
	if err := repo.Create(endpoint); err != nil {
		t.Fatalf("Failed to create endpoint: %v", err)
	}

	tx, _ := repo.BeginTx()
	if err := repo.ApplySubscriptionDiffTx(tx, endpoint.ID, []string{"TASKS_CREATED", "TASKS_DELETED"}, nil); err != nil {
		t.Fatalf("Failed to add subscriptions: %v", err)
	}
	tx.Commit()

	if err := repo.Delete(endpoint.ID); err != nil {
		t.Fatalf("Failed to delete endpoint: %v", err)
	}

	actions, err := repo.ListActionIDs(endpoint.ID)
	if err != nil {
		t.Fatalf("ListActionIDs failed: %v", err)
	}
	if len(actions) != 0 {
		t.Errorf("Expected subscriptions cascade-deleted, got %v", actions)
	}
}

func TestEndpointRepository_DuplicateInsertIgnored(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewEndpointRepository(db)

	endpoint := &models.Endpoint{
		OrganizationID: "org_1",
		URL:            "https://example.com/hook",
		Headers:        map[string]string{},
		IsActive:       true,
	}
	if err := repo.Create(endpoint); err != nil {
		t.Fatalf("Failed to create endpoint: %v", err)
	}

	// Two racing reconciliations adding the same pair: the second insert is
	// already-satisfied, not a conflict.
	for i := 0; i < 2; i++ {
		tx, _ := repo.BeginTx()
		if err := repo.ApplySubscriptionDiffTx(tx, endpoint.ID, []string{"TASKS_CREATED"}, nil); err != nil {
			t.Fatalf("Apply %d failed: %v", i, err)
		}
		tx.Commit()
	}

	actions, _ := repo.ListActionIDs(endpoint.ID)
	if len(actions) != 1 {
		t.Errorf("Expected exactly one subscription row, got %d", len(actions))
	}
}

func TestEndpointRepository_SubscribedEndpointIDs(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewEndpointRepository(db)

	first := &models.Endpoint{OrganizationID: "org_1", URL: "https://a.example.com", Headers: map[string]string{}, IsActive: true}
	second := &models.Endpoint{OrganizationID: "org_1", URL: "https://b.example.com", Headers: map[string]string{}, IsActive: true}
	foreign := &models.Endpoint{OrganizationID: "org_2", URL: "https://c.example.com", Headers: map[string]string{}, IsActive: true}
	for _, e := range []*models.Endpoint{first, second, foreign} {
		if err := repo.Create(e); err != nil {
			t.Fatalf("Failed to create endpoint: %v", err)
		}
	}

	for _, e := range []*models.Endpoint{first, foreign} {
		tx, _ := repo.BeginTx()
		repo.ApplySubscriptionDiffTx(tx, e.ID, []string{"TASKS_CREATED"}, nil)
		tx.Commit()
	}

	ids, err := repo.SubscribedEndpointIDs("org_1", "TASKS_CREATED")
	if err != nil {
		t.Fatalf("SubscribedEndpointIDs failed: %v", err)
	}
	if !ids[first.ID] || ids[second.ID] || ids[foreign.ID] {
		t.Errorf("Expected only %s subscribed within org_1, got %v", first.ID, ids)
	}
}
