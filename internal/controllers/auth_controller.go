package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"ecoverse/internal/apperr"
	"ecoverse/internal/models"
	"ecoverse/internal/sanitize"
)

const dateLayout = "2006-01-02"

type registerInput struct {
	Name        string `json:"name" binding:"required,max=100"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	PhoneNumber string `json:"phoneNumber" binding:"max=30"`
	Dob         string `json:"dob"`
	Role        string `json:"role"`
}

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a volunteer or organization account and logs it in.
func (h *Handler) Register(c *gin.Context) {
	var input registerInput
	if !h.bind(c, &input) {
		return
	}
	name := sanitize.Text(input.Name)
	if name == "" {
		h.WriteError(c, invalid("name is required"))
		return
	}

	role, err := registrableRole(input.Role)
	if err != nil {
		h.WriteError(c, err)
		return
	}
	dob, err := parseDate(input.Dob)
	if err != nil {
		h.WriteError(c, err)
		return
	}
	hashed, err := hashPassword(input.Password)
	if err != nil {
		h.WriteError(c, fmt.Errorf("could not hash password: %w", err))
		return
	}

	user := models.User{
		Name:        name,
		Email:       normalizeEmail(input.Email),
		Password:    hashed,
		PhoneNumber: sanitize.Text(input.PhoneNumber),
		Dob:         dob,
		Role:        role,
		Status:      models.StatusActivated,
	}
	if err := h.Users.Create(c.Request.Context(), &user); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			err = fmt.Errorf("%w: email already in use", apperr.ErrConflict)
		}
		h.WriteError(c, err)
		return
	}

	h.respondWithToken(c, http.StatusCreated, user)
}

// Login exchanges credentials for a token. A deactivated account with the
// right password gets ErrAccountDeactivated; it never gets a token.
func (h *Handler) Login(c *gin.Context) {
	var input loginInput
	if !h.bind(c, &input) {
		return
	}

	user, err := h.Users.ByEmail(c.Request.Context(), normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			err = apperr.ErrInvalidCredentials
		}
		h.WriteError(c, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		h.WriteError(c, apperr.ErrInvalidCredentials)
		return
	}
	if user.Deactivated() {
		h.WriteError(c, apperr.ErrAccountDeactivated)
		return
	}

	h.respondWithToken(c, http.StatusOK, *user)
}

// Me returns the caller's account as currently stored.
func (h *Handler) Me(c *gin.Context) {
	caller, ok := h.mustCaller(c)
	if !ok {
		return
	}
	user, err := h.Users.Get(c.Request.Context(), caller.ID)
	if err != nil {
		h.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) respondWithToken(c *gin.Context, status int, user models.User) {
	token, expires, err := h.Tokens.Generate(user)
	if err != nil {
		h.WriteError(c, fmt.Errorf("could not generate token: %w", err))
		return
	}
	c.JSON(status, gin.H{
		"token":     token,
		"expiresAt": expires.UTC(),
		"user":      user,
	})
}

// SeedAdmin creates the bootstrap admin account unless the email is taken.
// Admins cannot register themselves, so this is the only way in.
func SeedAdmin(ctx context.Context, users UserRepository, name, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if _, err := users.ByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return false, err
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return false, err
	}
	admin := models.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     models.RoleAdmin,
		Status:   models.StatusActivated,
	}
	if err := users.Create(ctx, &admin); err != nil {
		return false, err
	}
	return true, nil
}

func registrableRole(raw string) (string, error) {
	role := strings.ToLower(strings.TrimSpace(raw))
	switch role {
	case "":
		return models.RoleVolunteer, nil
	case models.RoleVolunteer, models.RoleOrganization:
		return role, nil
	case models.RoleAdmin:
		return "", fmt.Errorf("%w: admin accounts cannot be self-registered", apperr.ErrForbidden)
	default:
		return "", invalid("unknown role %q", raw)
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, invalid("dob must be formatted as YYYY-MM-DD")
	}
	return &d, nil
}
