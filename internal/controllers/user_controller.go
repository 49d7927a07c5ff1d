package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"ecoverse/internal/apperr"
	"ecoverse/internal/middleware"
	"ecoverse/internal/models"
	"ecoverse/internal/policy"
	"ecoverse/internal/sanitize"
)

// updateUserInput carries the profile fields an owner or admin may change.
// Role and status are not editable here.
type updateUserInput struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Email       *string `json:"email" binding:"omitempty,email"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitempty,max=30"`
	Dob         *string `json:"dob"`
	Password    *string `json:"password" binding:"omitempty,min=8,max=72"`
}

type statusInput struct {
	Status string `json:"status" binding:"required,oneof=activated deactivated"`
}

// ListUsers is the admin dashboard's account list.
func (h *Handler) ListUsers(c *gin.Context) {
	users, page, ok := list(h, c, h.Users, private, middleware.CallerFrom(c))
	if !ok {
		return
	}
	writePage(c, users, page)
}

func (h *Handler) GetUser(c *gin.Context) {
	user, ok := load(h, c, h.Users, private, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) UpdateUser(c *gin.Context) {
	user, ok := load(h, c, h.Users, private, true)
	if !ok {
		return
	}
	var input updateUserInput
	if !h.bind(c, &input) {
		return
	}

	if input.Name != nil {
		user.Name = sanitize.Text(*input.Name)
		if user.Name == "" {
			h.WriteError(c, invalid("name cannot be empty"))
			return
		}
	}
	if input.Email != nil {
		user.Email = normalizeEmail(*input.Email)
	}
	if input.PhoneNumber != nil {
		user.PhoneNumber = sanitize.Text(*input.PhoneNumber)
	}
	if input.Dob != nil {
		dob, err := parseDate(*input.Dob)
		if err != nil {
			h.WriteError(c, err)
			return
		}
		user.Dob = dob
	}
	if input.Password != nil {
		hashed, err := hashPassword(*input.Password)
		if err != nil {
			h.WriteError(c, fmt.Errorf("could not hash password: %w", err))
			return
		}
		user.Password = hashed
	}

	if err := h.Users.Save(c.Request.Context(), user); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			err = fmt.Errorf("%w: email already in use", apperr.ErrConflict)
		}
		h.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// SetUserStatus activates or deactivates an account. Admins may do either;
// an account holder may only deactivate their own account.
func (h *Handler) SetUserStatus(c *gin.Context) {
	user, ok := load(h, c, h.Users, private, true)
	if !ok {
		return
	}
	var input statusInput
	if !h.bind(c, &input) {
		return
	}

	if !policy.IsAdmin(middleware.CallerFrom(c)) && input.Status != models.StatusDeactivated {
		h.WriteError(c, fmt.Errorf("%w: only an admin can reactivate an account", apperr.ErrForbidden))
		return
	}

	user.Status = input.Status
	if err := h.Users.Save(c.Request.Context(), user); err != nil {
		h.WriteError(c, err)
		return
	}
	h.logger().WithFields(logrus.Fields{
		"user_id": user.ID,
		"status":  user.Status,
		"by":      callerID(c),
	}).Info("account status changed")
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// DeleteUser removes an account for good. Admin only.
func (h *Handler) DeleteUser(c *gin.Context) {
	user, ok := load(h, c, h.Users, private, true)
	if !ok {
		return
	}
	if !policy.IsAdmin(middleware.CallerFrom(c)) {
		h.WriteError(c, fmt.Errorf("%w: only an admin can delete accounts", apperr.ErrForbidden))
		return
	}
	if err := h.Users.Delete(c.Request.Context(), user.ID); err != nil {
		h.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
