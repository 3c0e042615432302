package endpoints

import (
	"net/url"
	"regexp"

	"hookrelay/internal/pkg/errors"
	"hookrelay/internal/platform/models"
)

const (
	maxURLLength = 2048
	maxHeaders   = 10
)

var headerKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9-_]+$`)

func ValidateEndpoint(endpoint *models.Endpoint) error {
	if endpoint.URL == "" {
		return &errors.ValidationError{Field: "url", Reason: "is required"}
	}
	if len(endpoint.URL) > maxURLLength {
		return &errors.ValidationError{Field: "url", Reason: "must be at most 2048 characters"}
	}

	u, err := url.Parse(endpoint.URL)
	if err != nil {
		return &errors.ValidationError{Field: "url", Reason: "is not a well-formed URL"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &errors.ValidationError{Field: "url", Reason: "must start with http:// or https://"}
	}
	if u.Host == "" {
		return &errors.ValidationError{Field: "url", Reason: "is missing a host"}
	}

	return ValidateHeaders(endpoint.Headers)
}

// ValidateHeaders enforces the extra-headers schema: at most 10 entries,
// keys restricted to [a-zA-Z0-9-_]+, string values.
func ValidateHeaders(headers map[string]string) error {
	if len(headers) > maxHeaders {
		return &errors.ValidationError{Field: "headers", Reason: "must contain at most 10 entries"}
	}
	for key := range headers {
		if !headerKeyPattern.MatchString(key) {
			return &errors.ValidationError{Field: "headers", Reason: "key " + key + " contains invalid characters"}
		}
	}
	return nil
}
