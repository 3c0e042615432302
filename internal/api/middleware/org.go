package middleware

import (
	"context"
	"net/http"

	apiContext "hookrelay/internal/api/context"
	"hookrelay/internal/pkg/errors"
	"hookrelay/internal/platform/auth"
	"hookrelay/internal/platform/repositories"
)

// OrgContext carries the tenant boundary for the request.
type OrgContext struct {
	OrgID         string
	OrgSlug       string
	WebhookSecret string
}

type OrgMiddleware struct {
	orgRepo *repositories.OrganizationRepository
}

func NewOrgMiddleware(orgRepo *repositories.OrganizationRepository) *OrgMiddleware {
	return &OrgMiddleware{orgRepo: orgRepo}
}

func (m *OrgMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(apiContext.Claims).(*auth.Claims)
		if !ok {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No authentication claims found", nil)
			return
		}

		org, err := m.orgRepo.GetByID(claims.OrganizationID)
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load organization", nil)
			return
		}
		if org == nil || org.DeletedAt != nil {
			errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Organization not found", nil)
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Org, &OrgContext{
			OrgID:         org.ID,
			OrgSlug:       org.Slug,
			WebhookSecret: org.WebhookSecret,
		})

		next(w, r.WithContext(ctx))
	}
}
