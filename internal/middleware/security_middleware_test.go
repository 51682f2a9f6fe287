package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-pos-local/internal/auth"
	"go-pos-local/internal/models"

	"github.com/gin-gonic/gin"
)

type fixedSession struct {
	user *models.User
}

func (f fixedSession) CurrentUser() (models.User, bool) {
	if f.user == nil {
		return models.User{}, false
	}
	return *f.user, true
}

func newRouter(sessions SessionSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api", AuthMiddleware(sessions))
	api.GET("/me", func(c *gin.Context) {
		u, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": u.ID})
	})
	api.GET("/admin", RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func request(r http.Handler, path, token string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuthMiddleware(t *testing.T) {
	auth.Configure("middleware-test")
	employee := models.User{ID: "2", Email: "employee@pos.com", Name: "Employee User", Role: models.RoleEmployee}
	token, err := auth.GenerateToken(employee.ID, string(employee.Role))
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	active := newRouter(fixedSession{user: &employee})
	if code := request(active, "/api/me", token); code != http.StatusOK {
		t.Fatalf("valid token: got %d", code)
	}
	if code := request(active, "/api/me", ""); code != http.StatusUnauthorized {
		t.Fatalf("missing token: got %d", code)
	}
	if code := request(active, "/api/me", "garbage"); code != http.StatusUnauthorized {
		t.Fatalf("bad token: got %d", code)
	}
	if code := request(active, "/api/admin", token); code != http.StatusForbidden {
		t.Fatalf("employee on admin route: got %d", code)
	}

	loggedOut := newRouter(fixedSession{})
	if code := request(loggedOut, "/api/me", token); code != http.StatusUnauthorized {
		t.Fatalf("token after logout: got %d", code)
	}

	other := models.User{ID: "1", Email: "admin@pos.com", Name: "Admin User", Role: models.RoleAdmin}
	if code := request(newRouter(fixedSession{user: &other}), "/api/me", token); code != http.StatusUnauthorized {
		t.Fatalf("token of a previous user: got %d", code)
	}
}
