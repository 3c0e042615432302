package endpoints

import (
	"fmt"

	"hookrelay/internal/pkg/errors"
	"hookrelay/internal/platform/models"
	"hookrelay/internal/platform/repositories"
)

type CreateInput struct {
	OrganizationID    string
	ProjectID         *string
	URL               string
	SendPayload       *bool
	SendForAllActions *bool
	Headers           map[string]string
}

type UpdateInput struct {
	URL               string
	SendPayload       *bool
	SendForAllActions *bool
	Headers           map[string]string
	IsActive          *bool
}

type Service struct {
	repo    *repositories.EndpointRepository
	orgRepo *repositories.OrganizationRepository
}

func NewService(repo *repositories.EndpointRepository, orgRepo *repositories.OrganizationRepository) *Service {
	return &Service{repo: repo, orgRepo: orgRepo}
}

func (s *Service) Create(input CreateInput) (*models.Endpoint, error) {
	endpoint := &models.Endpoint{
		OrganizationID:    input.OrganizationID,
		ProjectID:         input.ProjectID,
		URL:               input.URL,
		SendPayload:       true,
		SendForAllActions: true,
		Headers:           input.Headers,
		IsActive:          true,
	}
	if input.SendPayload != nil {
		endpoint.SendPayload = *input.SendPayload
	}
	if input.SendForAllActions != nil {
		endpoint.SendForAllActions = *input.SendForAllActions
	}
	if endpoint.Headers == nil {
		endpoint.Headers = map[string]string{}
	}

	if err := ValidateEndpoint(endpoint); err != nil {
		return nil, err
	}

	if err := s.repo.Create(endpoint); err != nil {
		return nil, err
	}
	return endpoint, nil
}

func (s *Service) Get(id string) (*models.Endpoint, error) {
	endpoint, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if endpoint == nil {
		return nil, fmt.Errorf("%w: endpoint %s", errors.ErrNotFound, id)
	}
	return endpoint, nil
}

// Update applies the given changes. ProjectID is not part of UpdateInput:
// the scoping shape of an endpoint cannot change after creation.
func (s *Service) Update(id string, updates UpdateInput) (*models.Endpoint, error) {
	endpoint, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if updates.URL != "" {
		endpoint.URL = updates.URL
	}
	if updates.SendPayload != nil {
		endpoint.SendPayload = *updates.SendPayload
	}
	if updates.SendForAllActions != nil {
		endpoint.SendForAllActions = *updates.SendForAllActions
	}
	if updates.Headers != nil {
		endpoint.Headers = updates.Headers
	}
	if updates.IsActive != nil {
		endpoint.IsActive = *updates.IsActive
	}

	if err := ValidateEndpoint(endpoint); err != nil {
		return nil, err
	}

	if err := s.repo.Update(endpoint); err != nil {
		return nil, err
	}
	return endpoint, nil
}

func (s *Service) List(orgID string) ([]*models.Endpoint, error) {
	return s.repo.ListByOrg(orgID)
}

// Deactivate disables delivery without losing the subscription set.
func (s *Service) Deactivate(id string) error {
	return s.repo.SetActive(id, false)
}

func (s *Service) Delete(id string) error {
	return s.repo.Delete(id)
}

// HasPermission reports whether the user may manage the endpoint: membership
// in the endpoint's organization is the only requirement.
func (s *Service) HasPermission(userID string, endpoint *models.Endpoint) (bool, error) {
	return s.orgRepo.IsMember(userID, endpoint.OrganizationID)
}
