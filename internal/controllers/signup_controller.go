package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"ecoverse/internal/apperr"
	"ecoverse/internal/models"
	"ecoverse/internal/sanitize"
)

type createSignupInput struct {
	EventID     uint   `json:"eventId" binding:"required"`
	Name        string `json:"name" binding:"max=100"`
	Email       string `json:"email" binding:"omitempty,email"`
	PhoneNumber string `json:"phoneNumber" binding:"max=30"`
	Notes       string `json:"notes" binding:"max=1000"`
}

type updateSignupInput struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Email       *string `json:"email" binding:"omitempty,email"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitempty,max=30"`
	Notes       *string `json:"notes" binding:"omitempty,max=1000"`
}

// CreateSignup registers the caller for an event. Name and email default to
// the caller's own.
func (h *Handler) CreateSignup(c *gin.Context) {
	caller, ok := h.mustCaller(c)
	if !ok {
		return
	}
	var input createSignupInput
	if !h.bind(c, &input) {
		return
	}

	if _, err := h.Events.Get(c.Request.Context(), input.EventID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			err = fmt.Errorf("%w: event %d", apperr.ErrNotFound, input.EventID)
		}
		h.WriteError(c, err)
		return
	}

	signup := models.Signup{
		UserID:      caller.ID,
		EventID:     input.EventID,
		Name:        sanitize.Text(input.Name),
		Email:       normalizeEmail(input.Email),
		PhoneNumber: sanitize.Text(input.PhoneNumber),
		Notes:       sanitize.Text(input.Notes),
	}
	if signup.Name == "" {
		signup.Name = caller.Name
	}
	if signup.Email == "" {
		signup.Email = caller.Email
	}

	if err := h.Signups.Create(c.Request.Context(), &signup); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			err = fmt.Errorf("%w: already signed up for this event", apperr.ErrConflict)
		}
		h.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"signup": signup})
}

// ListSignups returns the caller's sign-ups, or every sign-up for an admin.
func (h *Handler) ListSignups(c *gin.Context) {
	caller, ok := h.mustCaller(c)
	if !ok {
		return
	}
	signups, page, ok := list(h, c, h.Signups, private, caller)
	if !ok {
		return
	}
	writePage(c, signups, page)
}

func (h *Handler) GetSignup(c *gin.Context) {
	signup, ok := load(h, c, h.Signups, private, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"signup": signup})
}

func (h *Handler) UpdateSignup(c *gin.Context) {
	signup, ok := load(h, c, h.Signups, private, true)
	if !ok {
		return
	}
	var input updateSignupInput
	if !h.bind(c, &input) {
		return
	}
	if input.Name != nil {
		signup.Name = sanitize.Text(*input.Name)
		if signup.Name == "" {
			h.WriteError(c, invalid("name cannot be empty"))
			return
		}
	}
	if input.Email != nil {
		signup.Email = normalizeEmail(*input.Email)
	}
	if input.PhoneNumber != nil {
		signup.PhoneNumber = sanitize.Text(*input.PhoneNumber)
	}
	if input.Notes != nil {
		signup.Notes = sanitize.Text(*input.Notes)
	}
	if err := h.Signups.Save(c.Request.Context(), signup); err != nil {
		h.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"signup": signup})
}

func (h *Handler) DeleteSignup(c *gin.Context) {
	signup, ok := load(h, c, h.Signups, private, true)
	if !ok {
		return
	}
	if err := h.Signups.Delete(c.Request.Context(), signup.ID); err != nil {
		h.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signup deleted"})
}
