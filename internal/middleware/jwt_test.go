package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-pulse/backend/internal/auth"
)

func newJWTRouter(svc *auth.JWTService, capture *gin.H) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", JWT(svc), func(c *gin.Context) {
		*capture = gin.H{
			ContextUserID:   c.MustGet(ContextUserID),
			ContextTenantID: c.MustGet(ContextTenantID),
			ContextUserRole: c.MustGet(ContextUserRole),
		}
		c.Status(http.StatusOK)
	})
	return r
}

func TestJWTSetsClaimsInContext(t *testing.T) {
	svc := auth.NewJWTService("test-secret", 1)
	userID, tenantID := uuid.New(), uuid.New()
	token, err := svc.Generate(userID, tenantID, "admin@acme.test", "admin")
	require.NoError(t, err)

	var got gin.H
	r := newJWTRouter(svc, &got)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, got[ContextUserID])
	assert.Equal(t, tenantID, got[ContextTenantID])
	assert.Equal(t, "admin", got[ContextUserRole])
}

func TestJWTRejectsBadRequests(t *testing.T) {
	svc := auth.NewJWTService("test-secret", 1)
	var got gin.H
	r := newJWTRouter(svc, &got)

	noTenant, err := svc.Generate(uuid.New(), uuid.Nil, "a@acme.test", "member")
	require.NoError(t, err)

	otherSecret := auth.NewJWTService("other-secret", 1)
	wrongKey, err := otherSecret.Generate(uuid.New(), uuid.New(), "a@acme.test", "member")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not a bearer scheme", header: "Basic abc"},
		{name: "garbage token", header: "Bearer not-a-jwt"},
		{name: "wrong signing key", header: "Bearer " + wrongKey},
		{name: "token without tenant", header: "Bearer " + noTenant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
