package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"ecoverse/internal/apperr"
	"ecoverse/internal/models"
	"ecoverse/internal/policy"
)

const callerKey = "caller"

// Claims is the token payload.
type Claims struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Accounts looks up the stored account a token was issued for.
type Accounts interface {
	Get(ctx context.Context, id uint) (*models.User, error)
}

// Tokens issues and verifies HS256 bearer tokens with a fixed lifetime.
type Tokens struct {
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	accounts Accounts
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithAccounts makes the guards re-read the caller's account on every
// request. A deleted account fails authentication and a deactivated one is
// refused; role, name and email come from the stored row.
func (t *Tokens) WithAccounts(accounts Accounts) *Tokens {
	t.accounts = accounts
	return t
}

func (t *Tokens) Generate(user models.User) (string, time.Time, error) {
	issued := t.now()
	expires := issued.Add(t.ttl)
	claims := Claims{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Parse verifies signature and expiry and returns the caller the token
// names. Every failure wraps apperr.ErrAuthentication.
func (t *Tokens) Parse(raw string) (*policy.Caller, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrAuthentication, err)
	}
	if !token.Valid || claims.ID == 0 || claims.Role == "" {
		return nil, fmt.Errorf("%w: invalid token claims", apperr.ErrAuthentication)
	}
	return &policy.Caller{ID: claims.ID, Email: claims.Email, Name: claims.Name, Role: claims.Role}, nil
}

func bearer(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return raw, raw != ""
}

func abortUnauthenticated(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message, "code": "AUTHENTICATION_REQUIRED"})
}

// verify checks the caller's stored account, when an account lookup is
// configured.
func (t *Tokens) verify(ctx context.Context, caller *policy.Caller) (*policy.Caller, error) {
	if t.accounts == nil {
		return caller, nil
	}
	user, err := t.accounts.Get(ctx, caller.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("%w: account no longer exists", apperr.ErrAuthentication)
	}
	if err != nil {
		return nil, err
	}
	if user.Deactivated() {
		return nil, apperr.ErrAccountDeactivated
	}
	return &policy.Caller{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role}, nil
}

func abortAccount(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrAccountDeactivated):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account is deactivated", "code": "ACCOUNT_DEACTIVATED"})
	case errors.Is(err, apperr.ErrAuthentication):
		abortUnauthenticated(c, "Account no longer exists")
	default:
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": "INTERNAL"})
	}
}

// RequireAuth ensures a valid token for a live account is present and
// attaches its caller.
func RequireAuth(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearer(c)
		if !ok {
			abortUnauthenticated(c, "Missing or invalid Authorization header")
			return
		}
		caller, err := tokens.Parse(raw)
		if err != nil {
			abortUnauthenticated(c, "Invalid or expired token")
			return
		}
		caller, err = tokens.verify(c.Request.Context(), caller)
		if err != nil {
			abortAccount(c, err)
			return
		}
		WithCaller(c, caller)
		c.Next()
	}
}

// OptionalAuth attaches the caller when a valid token is present and lets
// anonymous requests through otherwise. A valid token for a deleted or
// deactivated account is refused as it is by RequireAuth.
func OptionalAuth(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, ok := bearer(c); ok {
			if caller, err := tokens.Parse(raw); err == nil {
				caller, err = tokens.verify(c.Request.Context(), caller)
				if err != nil {
					abortAccount(c, err)
					return
				}
				WithCaller(c, caller)
			}
		}
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := CallerFrom(c)
		if caller == nil {
			abortUnauthenticated(c, "Authentication required")
			return
		}
		if !slices.Contains(roles, caller.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions", "code": "FORBIDDEN"})
			return
		}
		c.Next()
	}
}

func WithCaller(c *gin.Context, caller *policy.Caller) {
	c.Set(callerKey, caller)
}

// CallerFrom returns the caller attached by RequireAuth or OptionalAuth, or
// nil for an anonymous request.
func CallerFrom(c *gin.Context) *policy.Caller {
	v, ok := c.Get(callerKey)
	if !ok {
		return nil
	}
	caller, _ := v.(*policy.Caller)
	return caller
}
