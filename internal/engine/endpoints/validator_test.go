package endpoints

import (
	"strings"
	"testing"

	"hookrelay/internal/pkg/errors"
	"hookrelay/internal/platform/models"
)

func TestValidateEndpoint_URL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"Valid HTTPS", "https://example.com/hook", false},
		{"Valid HTTP", "http://example.com/hook", false},
		{"Empty", "", true},
		{"Bad Scheme", "ftp://example.com/hook", true},
		{"No Host", "https://", true},
		{"Not A URL", "://nope", true},
		{"Too Long", "https://example.com/" + strings.Repeat("a", 2048), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint := &models.Endpoint{URL: tt.url}
			err := ValidateEndpoint(endpoint)
			if tt.wantErr && err == nil {
				t.Errorf("Expected error for url %q", tt.url)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error for url %q: %v", tt.url, err)
			}
			if tt.wantErr && err != nil && !errors.IsValidation(err) {
				t.Errorf("Expected a ValidationError, got %T", err)
			}
		})
	}
}

func TestValidateHeaders(t *testing.T) {
	tooMany := make(map[string]string)
	for _, k := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"} {
		tooMany[k] = "v"
	}

	tests := []struct {
		name    string
		headers map[string]string
		wantErr bool
	}{
		{"Nil", nil, false},
		{"Valid", map[string]string{"X-Api-Key": "secret", "X_Trace_1": "abc"}, false},
		{"Invalid Key Characters", map[string]string{"X Api Key": "secret"}, true},
		{"Empty Key", map[string]string{"": "secret"}, true},
		{"Too Many Entries", tooMany, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHeaders(tt.headers)
			if tt.wantErr && err == nil {
				t.Error("Expected error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}
