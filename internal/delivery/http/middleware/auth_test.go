package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventrsvp/internal/delivery/http/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAdmin(t *testing.T) {
	const secret = "super-secret"

	tests := []struct {
		name       string
		authHeader string
		secret     string
		wantStatus int
		nextCalled bool
	}{
		{
			name:       "valid token calls next",
			authHeader: "Bearer super-secret",
			secret:     secret,
			wantStatus: http.StatusOK,
			nextCalled: true,
		},
		{
			name:       "missing authorization header",
			authHeader: "",
			secret:     secret,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid authorization format no Bearer prefix",
			authHeader: "Basic abc",
			secret:     secret,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong token",
			authHeader: "Bearer nope",
			secret:     secret,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty configured secret never authorizes",
			authHeader: "Bearer ",
			secret:     "",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
			})
			handler := RequireAdmin(tt.secret)(next.ServeHTTP)

			req := httptest.NewRequest(http.MethodGet, "http://test/admin/registrations", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			handler(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			assert.Equal(t, tt.nextCalled, nextCalled, "next handler called")
			if tt.wantStatus == http.StatusUnauthorized {
				var body helpers.ErrorResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
				assert.Equal(t, "Unauthorized", body.Error)
			}
		})
	}
}
