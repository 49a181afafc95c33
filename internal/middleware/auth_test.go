package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sproutly/sproutly-backend/internal/logger"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, role string, familyID uuid.UUID) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":       uuid.New().String(),
		"family_id": familyID.String(),
		"role":      role,
		"exp":       time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(logger.NewNop(), testSecret)
	r := gin.New()
	authed := r.Group("/", am.RequireAuth())
	authed.GET("/family", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"family_id": FamilyID(c).String()})
	})
	authed.POST("/parent-only", am.RequireParent(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	r := newTestRouter()
	familyID := uuid.New()

	cases := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{name: "missing_token", want: http.StatusUnauthorized},
		{name: "garbage_token", header: "Bearer not.a.jwt", want: http.StatusUnauthorized},
		{name: "wrong_secret", header: "Bearer " + signTokenWithSecret(t, "other-secret", familyID), want: http.StatusUnauthorized},
		{name: "valid_bearer", header: "Bearer " + signToken(t, testSecret, RoleParent, familyID), want: http.StatusOK},
		{name: "valid_query", query: signToken(t, testSecret, RoleChild, familyID), want: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target := "/family"
			if tc.query != "" {
				target += "?token=" + tc.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func signTokenWithSecret(t *testing.T, secret string, familyID uuid.UUID) string {
	t.Helper()
	return signToken(t, secret, RoleParent, familyID)
}

func TestRequireParentRejectsChildTokens(t *testing.T) {
	r := newTestRouter()
	familyID := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/parent-only", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, RoleChild, familyID))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("child token status = %d, want 403", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/parent-only", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, RoleParent, familyID))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("parent token status = %d, want 204", w.Code)
	}
}

func TestFamilyIDScopesRequests(t *testing.T) {
	r := newTestRouter()
	familyID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/family", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, RoleParent, familyID))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	want := `"family_id":"` + familyID.String() + `"`
	if body := w.Body.String(); !strings.Contains(body, want) {
		t.Fatalf("body %q missing %q", body, want)
	}
}
