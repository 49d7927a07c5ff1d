package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ecoverse/internal/geo"
	"ecoverse/internal/middleware"
	"ecoverse/internal/models"
	"ecoverse/internal/sanitize"
)

type eventInput struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string    `json:"description"`
	Location    *string    `json:"location" binding:"omitempty,max=200"`
	StartsAt    *time.Time `json:"startsAt"`
	ImageURL    *string    `json:"imageUrl" binding:"omitempty,max=500"`

	// GeoJSON Point of the venue; an explicit null clears it.
	Geometry json.RawMessage `json:"geometry"`
}

// EventResponse is an event with its venue rendered as GeoJSON.
type EventResponse struct {
	models.Event
	Geometry json.RawMessage `json:"geometry,omitempty"`
}

func toEventResponse(e models.Event) EventResponse {
	resp := EventResponse{Event: e}
	if s, err := geo.WKBToGeoJSON(e.Geometry); err == nil && s != "" {
		resp.Geometry = json.RawMessage(s)
	}
	return resp
}

func toEventResponses(events []models.Event) []EventResponse {
	out := make([]EventResponse, len(events))
	for i, e := range events {
		out[i] = toEventResponse(e)
	}
	return out
}

// apply copies the supplied fields onto e. Ownership is never taken from
// the payload.
func (in eventInput) apply(e *models.Event) error {
	if in.Title != nil {
		e.Title = sanitize.Text(*in.Title)
	}
	if in.Description != nil {
		e.Description = sanitize.Text(*in.Description)
	}
	if in.Location != nil {
		e.Location = sanitize.Text(*in.Location)
	}
	if in.StartsAt != nil {
		e.StartsAt = in.StartsAt
	}
	if in.ImageURL != nil {
		e.ImageURL = *in.ImageURL
	}
	if len(in.Geometry) > 0 {
		raw := string(in.Geometry)
		if raw == "null" {
			raw = ""
		}
		b, err := geo.PointToWKB(raw)
		if err != nil {
			return invalid("%v", err)
		}
		e.Geometry = b
	}
	return nil
}

// ListEvents is public.
func (h *Handler) ListEvents(c *gin.Context) {
	events, page, ok := list(h, c, h.Events, public, middleware.CallerFrom(c))
	if !ok {
		return
	}
	writePage(c, toEventResponses(events), page)
}

// ListMyEvents lists the events the caller submitted (all events for an admin).
func (h *Handler) ListMyEvents(c *gin.Context) {
	caller, ok := h.mustCaller(c)
	if !ok {
		return
	}
	events, page, ok := list(h, c, h.Events, private, caller)
	if !ok {
		return
	}
	writePage(c, toEventResponses(events), page)
}

func (h *Handler) GetEvent(c *gin.Context) {
	event, ok := load(h, c, h.Events, public, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": toEventResponse(*event)})
}

func (h *Handler) CreateEvent(c *gin.Context) {
	caller, ok := h.mustCaller(c)
	if !ok {
		return
	}
	var input eventInput
	if !h.bind(c, &input) {
		return
	}
	if input.Title == nil || sanitize.Text(*input.Title) == "" {
		h.WriteError(c, invalid("title is required"))
		return
	}

	event := models.Event{UserID: caller.ID}
	if err := input.apply(&event); err != nil {
		h.WriteError(c, err)
		return
	}
	if err := h.Events.Create(c.Request.Context(), &event); err != nil {
		h.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"event": toEventResponse(event)})
}

func (h *Handler) UpdateEvent(c *gin.Context) {
	event, ok := load(h, c, h.Events, public, true)
	if !ok {
		return
	}
	var input eventInput
	if !h.bind(c, &input) {
		return
	}
	if err := input.apply(event); err != nil {
		h.WriteError(c, err)
		return
	}
	if event.Title == "" {
		h.WriteError(c, invalid("title cannot be empty"))
		return
	}
	if err := h.Events.Save(c.Request.Context(), event); err != nil {
		h.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": toEventResponse(*event)})
}

// DeleteEvent also removes the event's sign-ups (ON DELETE CASCADE).
func (h *Handler) DeleteEvent(c *gin.Context) {
	event, ok := load(h, c, h.Events, public, true)
	if !ok {
		return
	}
	if err := h.Events.Delete(c.Request.Context(), event.ID); err != nil {
		h.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}
