package repositories

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"hookrelay/internal/platform/models"
)

type EndpointRepository struct {
	db *sql.DB
}

func NewEndpointRepository(db *sql.DB) *EndpointRepository {
	return &EndpointRepository{db: db}
}

func (r *EndpointRepository) BeginTx() (*sql.Tx, error) {
	return r.db.Begin()
}

func (r *EndpointRepository) Create(endpoint *models.Endpoint) error {
	endpoint.ID = "ep_" + uuid.New().String()
	endpoint.CreatedAt = time.Now().Unix()
	endpoint.UpdatedAt = endpoint.CreatedAt

	headersJSON, err := json.Marshal(endpoint.Headers)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO endpoints (id, organization_id, project_id, url, send_payload, send_for_all_actions, headers, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query, endpoint.ID, endpoint.OrganizationID, endpoint.ProjectID, endpoint.URL,
		endpoint.SendPayload, endpoint.SendForAllActions, string(headersJSON), endpoint.IsActive,
		endpoint.CreatedAt, endpoint.UpdatedAt)
	return err
}

const endpointColumns = `id, organization_id, project_id, url, send_payload, send_for_all_actions, headers, is_active, created_at, updated_at`

func scanEndpoint(scan func(dest ...interface{}) error) (*models.Endpoint, error) {
	var e models.Endpoint
	var projectID sql.NullString
	var headersStr string

	err := scan(&e.ID, &e.OrganizationID, &projectID, &e.URL, &e.SendPayload, &e.SendForAllActions,
		&headersStr, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if projectID.Valid {
		e.ProjectID = &projectID.String
	}
	json.Unmarshal([]byte(headersStr), &e.Headers)

	return &e, nil
}

func (r *EndpointRepository) GetByID(id string) (*models.Endpoint, error) {
	row := r.db.QueryRow(`SELECT `+endpointColumns+` FROM endpoints WHERE id = ?`, id)
	endpoint, err := scanEndpoint(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return endpoint, nil
}

func (r *EndpointRepository) ListByOrg(orgID string) ([]*models.Endpoint, error) {
	rows, err := r.db.Query(`SELECT `+endpointColumns+` FROM endpoints WHERE organization_id = ? ORDER BY id ASC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var endpoints []*models.Endpoint
	for rows.Next() {
		e, err := scanEndpoint(rows.Scan)
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, e)
	}
	return endpoints, rows.Err()
}

// ListActiveByOrg returns the matching candidates for an organization,
// ordered by id so fan-out order is deterministic.
func (r *EndpointRepository) ListActiveByOrg(orgID string) ([]*models.Endpoint, error) {
	rows, err := r.db.Query(`SELECT `+endpointColumns+` FROM endpoints WHERE organization_id = ? AND is_active = 1 ORDER BY id ASC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var endpoints []*models.Endpoint
	for rows.Next() {
		e, err := scanEndpoint(rows.Scan)
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, e)
	}
	return endpoints, rows.Err()
}

// Update persists mutable endpoint fields. project_id is deliberately not in
// the SET list: an endpoint's scope shape is fixed at creation.
func (r *EndpointRepository) Update(endpoint *models.Endpoint) error {
	headersJSON, err := json.Marshal(endpoint.Headers)
	if err != nil {
		return err
	}
	endpoint.UpdatedAt = time.Now().Unix()

	query := `
		UPDATE endpoints
		SET url = ?, send_payload = ?, send_for_all_actions = ?, headers = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`
	_, err = r.db.Exec(query, endpoint.URL, endpoint.SendPayload, endpoint.SendForAllActions,
		string(headersJSON), endpoint.IsActive, endpoint.UpdatedAt, endpoint.ID)
	return err
}

func (r *EndpointRepository) SetActive(id string, active bool) error {
	_, err := r.db.Exec(`UPDATE endpoints SET is_active = ?, updated_at = ? WHERE id = ?`, active, time.Now().Unix(), id)
	return err
}

// Delete removes the endpoint; the subscriptions FK cascades.
func (r *EndpointRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM endpoints WHERE id = ?`, id)
	return err
}

// ListActionIDs returns the endpoint's current subscription set.
func (r *EndpointRepository) ListActionIDs(endpointID string) (map[string]bool, error) {
	rows, err := r.db.Query(`SELECT action_id FROM subscriptions WHERE endpoint_id = ?`, endpointID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	actions := make(map[string]bool)
	for rows.Next() {
		var action string
		if err := rows.Scan(&action); err != nil {
			return nil, err
		}
		actions[action] = true
	}
	return actions, rows.Err()
}

// SubscribedEndpointIDs returns the ids of endpoints in the organization that
// hold an explicit subscription to the action.
func (r *EndpointRepository) SubscribedEndpointIDs(orgID, actionID string) (map[string]bool, error) {
	query := `
		SELECT s.endpoint_id FROM subscriptions s
		JOIN endpoints e ON e.id = s.endpoint_id
		WHERE e.organization_id = ? AND s.action_id = ?
	`
	rows, err := r.db.Query(query, orgID, actionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// ApplySubscriptionDiffTx applies one reconciliation diff inside tx.
// INSERT OR IGNORE makes a concurrent duplicate insert already-satisfied
// rather than a conflict, per the unique (endpoint_id, action_id) pair.
func (r *EndpointRepository) ApplySubscriptionDiffTx(tx *sql.Tx, endpointID string, toAdd, toRemove []string) error {
	now := time.Now().Unix()
	for _, action := range toAdd {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO subscriptions (endpoint_id, action_id, created_at) VALUES (?, ?, ?)`,
			endpointID, action, now); err != nil {
			return err
		}
	}
	for _, action := range toRemove {
		if _, err := tx.Exec(`DELETE FROM subscriptions WHERE endpoint_id = ? AND action_id = ?`,
			endpointID, action); err != nil {
			return err
		}
	}
	return nil
}
