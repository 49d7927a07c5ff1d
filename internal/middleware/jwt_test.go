package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"ecoverse/internal/apperr"
	"ecoverse/internal/models"
)

var ann = models.User{ID: 7, Email: "ann@example.org", Name: "Ann", Role: models.RoleVolunteer}

func TestGenerateAndParse(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	raw, expires, err := tokens.Generate(ann)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if d := time.Until(expires); d <= 0 || d > time.Hour {
		t.Fatalf("unexpected expiry in %s", d)
	}

	caller, err := tokens.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if caller.ID != ann.ID || caller.Email != ann.Email || caller.Name != ann.Name || caller.Role != ann.Role {
		t.Fatalf("unexpected caller: %+v", caller)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, _, err := tokens.Generate(ann)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, err := NewTokens("secret", time.Hour).Parse(raw); !errors.Is(err, apperr.ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestParseRejectsBadSignature(t *testing.T) {
	raw, _, err := NewTokens("other", time.Hour).Generate(ann)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := NewTokens("secret", time.Hour).Parse(raw); !errors.Is(err, apperr.ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestParseRejectsUnsignedToken(t *testing.T) {
	claims := Claims{
		ID:   1,
		Role: models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewTokens("secret", time.Hour).Parse(raw); err == nil {
		t.Fatalf("expected alg=none token to be rejected")
	}
}

func TestParseRejectsMissingExpiry(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{ID: 1, Role: models.RoleAdmin}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewTokens("secret", time.Hour).Parse(raw); err == nil {
		t.Fatalf("expected token without exp to be rejected")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := NewTokens("secret", time.Hour).Parse("not.a.token"); !errors.Is(err, apperr.ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func newGuardedRouter(tokens *Tokens, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{RequireAuth(tokens)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		caller := CallerFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": caller.ID, "role": caller.Role})
	})
	r.GET("/private", handlers...)
	return r
}

func TestRequireAuth(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	valid, _, err := tokens.Generate(ann)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	r := newGuardedRouter(tokens)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"malformed", "Bearer abc", http.StatusUnauthorized},
		{"valid", "Bearer " + valid, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	r := newGuardedRouter(tokens, RequireRole(models.RoleOrganization, models.RoleAdmin))

	volunteer, _, _ := tokens.Generate(ann)
	org, _, _ := tokens.Generate(models.User{ID: 8, Email: "org@example.org", Role: models.RoleOrganization})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+volunteer)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("volunteer: expected 403, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+org)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("organization: expected 200, got %d", rec.Code)
	}
}

func TestOptionalAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := NewTokens("secret", time.Hour)
	r := gin.New()
	r.GET("/public", OptionalAuth(tokens), func(c *gin.Context) {
		if caller := CallerFrom(c); caller != nil {
			c.String(http.StatusOK, caller.Email)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	valid, _, _ := tokens.Generate(ann)
	cases := []struct {
		header string
		want   string
	}{
		{"", "anonymous"},
		{"Bearer junk", "anonymous"},
		{"Bearer " + valid, ann.Email},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK || rec.Body.String() != tc.want {
			t.Fatalf("header %q: got %d %q, want %q", tc.header, rec.Code, rec.Body.String(), tc.want)
		}
	}
}

type accountMap map[uint]models.User

func (m accountMap) Get(_ context.Context, id uint) (*models.User, error) {
	u, ok := m[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &u, nil
}

func TestGuardsRecheckStoredAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	accounts := accountMap{}
	tokens := NewTokens("secret", time.Hour).WithAccounts(accounts)
	token, _, err := tokens.Generate(ann)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	r := newGuardedRouter(tokens)
	r.GET("/public", OptionalAuth(tokens), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	promoted := ann
	promoted.Role = models.RoleOrganization
	deactivated := ann
	deactivated.Status = models.StatusDeactivated

	cases := []struct {
		name    string
		account *models.User
		path    string
		want    int
		code    string
	}{
		{"active", &ann, "/private", http.StatusOK, ""},
		{"deactivated", &deactivated, "/private", http.StatusForbidden, "ACCOUNT_DEACTIVATED"},
		{"deleted", nil, "/private", http.StatusUnauthorized, "AUTHENTICATION_REQUIRED"},
		{"deactivated on public route", &deactivated, "/public", http.StatusForbidden, "ACCOUNT_DEACTIVATED"},
		{"deleted on public route", nil, "/public", http.StatusUnauthorized, "AUTHENTICATION_REQUIRED"},
		{"role from stored account", &promoted, "/private", http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			delete(accounts, ann.ID)
			if tc.account != nil {
				accounts[ann.ID] = *tc.account
			}
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
			if tc.code != "" && !strings.Contains(rec.Body.String(), tc.code) {
				t.Fatalf("expected code %s in %s", tc.code, rec.Body.String())
			}
			if tc.account == &promoted && !strings.Contains(rec.Body.String(), models.RoleOrganization) {
				t.Fatalf("expected stored role, got %s", rec.Body.String())
			}
		})
	}
}
