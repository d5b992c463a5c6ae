package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tnma-app/membership-backend/internal/models"
)

func TestExtractTokenHeaderWinsOverCookie(t *testing.T) {
	got := ExtractToken("Bearer header-token", "cookie-token")
	assert.Equal(t, "header-token", got)
}

func TestExtractTokenFallsBackToCookie(t *testing.T) {
	assert.Equal(t, "cookie-token", ExtractToken("", "cookie-token"))
	assert.Equal(t, "cookie-token", ExtractToken("Basic abc", "cookie-token"))
}

func TestExtractTokenSentinelValues(t *testing.T) {
	// stale web clients serialize literal null/undefined into the header
	assert.Equal(t, "cookie-token", ExtractToken("Bearer null", "cookie-token"))
	assert.Equal(t, "cookie-token", ExtractToken("Bearer undefined", "cookie-token"))
	assert.Equal(t, "", ExtractToken("Bearer null", "undefined"))
	assert.Equal(t, "", ExtractToken("", ""))
}

func TestExtractTokenTrimsWhitespace(t *testing.T) {
	assert.Equal(t, "tok", ExtractToken("Bearer  tok ", ""))
}

func requireAdminStatus(t *testing.T, p *models.Principal) int {
	t.Helper()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	if p != nil {
		req = WithPrincipal(req, p)
	}
	rec := httptest.NewRecorder()
	RequireAdmin(next).ServeHTTP(rec, req)
	return rec.Code
}

func TestRequireAdmin(t *testing.T) {
	admin := models.UserPrincipal(&models.User{
		ID:   primitive.NewObjectID(),
		Role: models.RoleAdmin,
	})
	owner := models.UserPrincipal(&models.User{
		ID:   primitive.NewObjectID(),
		Role: models.RoleOwner,
	})
	employee := models.EmployeePrincipalOf(&models.Employee{
		ID:   primitive.NewObjectID(),
		Role: models.RoleEmployee,
	})

	assert.Equal(t, http.StatusOK, requireAdminStatus(t, admin))
	assert.Equal(t, http.StatusForbidden, requireAdminStatus(t, owner))
	assert.Equal(t, http.StatusForbidden, requireAdminStatus(t, employee))
	assert.Equal(t, http.StatusForbidden, requireAdminStatus(t, nil))
}
