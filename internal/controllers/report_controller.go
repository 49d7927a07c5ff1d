package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecoverse/internal/models"
	"ecoverse/internal/sanitize"
)

type reportInput struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	Location    *string `json:"location" binding:"omitempty,max=200"`
	ImageURL    *string `json:"imageUrl" binding:"omitempty,max=500"`
}

func (in reportInput) apply(r *models.Report) {
	if in.Title != nil {
		r.Title = sanitize.Text(*in.Title)
	}
	if in.Description != nil {
		r.Description = sanitize.Text(*in.Description)
	}
	if in.Location != nil {
		r.Location = sanitize.Text(*in.Location)
	}
	if in.ImageURL != nil {
		r.ImageURL = *in.ImageURL
	}
}

func (h *Handler) CreateReport(c *gin.Context) {
	caller, ok := h.mustCaller(c)
	if !ok {
		return
	}
	var input reportInput
	if !h.bind(c, &input) {
		return
	}

	report := models.Report{UserID: caller.ID}
	input.apply(&report)
	if report.Title == "" {
		h.WriteError(c, invalid("title is required"))
		return
	}
	if err := h.Reports.Create(c.Request.Context(), &report); err != nil {
		h.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"report": report})
}

func (h *Handler) ListReports(c *gin.Context) {
	caller, ok := h.mustCaller(c)
	if !ok {
		return
	}
	reports, page, ok := list(h, c, h.Reports, private, caller)
	if !ok {
		return
	}
	writePage(c, reports, page)
}

func (h *Handler) GetReport(c *gin.Context) {
	report, ok := load(h, c, h.Reports, private, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

func (h *Handler) UpdateReport(c *gin.Context) {
	report, ok := load(h, c, h.Reports, private, true)
	if !ok {
		return
	}
	var input reportInput
	if !h.bind(c, &input) {
		return
	}
	input.apply(report)
	if report.Title == "" {
		h.WriteError(c, invalid("title cannot be empty"))
		return
	}
	if err := h.Reports.Save(c.Request.Context(), report); err != nil {
		h.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

func (h *Handler) DeleteReport(c *gin.Context) {
	report, ok := load(h, c, h.Reports, private, true)
	if !ok {
		return
	}
	if err := h.Reports.Delete(c.Request.Context(), report.ID); err != nil {
		h.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Report deleted"})
}
