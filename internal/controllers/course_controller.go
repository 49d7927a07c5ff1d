package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecoverse/internal/middleware"
	"ecoverse/internal/models"
	"ecoverse/internal/sanitize"
)

type courseInput struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	Instructor  *string `json:"instructor" binding:"omitempty,max=100"`
	Duration    *string `json:"duration" binding:"omitempty,max=50"`
	ImageURL    *string `json:"imageUrl" binding:"omitempty,max=500"`
}

func (in courseInput) apply(course *models.Course) {
	if in.Title != nil {
		course.Title = sanitize.Text(*in.Title)
	}
	if in.Description != nil {
		course.Description = sanitize.Text(*in.Description)
	}
	if in.Instructor != nil {
		course.Instructor = sanitize.Text(*in.Instructor)
	}
	if in.Duration != nil {
		course.Duration = sanitize.Text(*in.Duration)
	}
	if in.ImageURL != nil {
		course.ImageURL = *in.ImageURL
	}
}

func (h *Handler) ListCourses(c *gin.Context) {
	courses, page, ok := list(h, c, h.Courses, public, middleware.CallerFrom(c))
	if !ok {
		return
	}
	writePage(c, courses, page)
}

func (h *Handler) GetCourse(c *gin.Context) {
	course, ok := load(h, c, h.Courses, public, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"course": course})
}

func (h *Handler) CreateCourse(c *gin.Context) {
	caller, ok := h.mustCaller(c)
	if !ok {
		return
	}
	var input courseInput
	if !h.bind(c, &input) {
		return
	}

	course := models.Course{UserID: caller.ID}
	input.apply(&course)
	if course.Title == "" {
		h.WriteError(c, invalid("title is required"))
		return
	}
	if err := h.Courses.Create(c.Request.Context(), &course); err != nil {
		h.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"course": course})
}

func (h *Handler) UpdateCourse(c *gin.Context) {
	course, ok := load(h, c, h.Courses, public, true)
	if !ok {
		return
	}
	var input courseInput
	if !h.bind(c, &input) {
		return
	}
	input.apply(course)
	if course.Title == "" {
		h.WriteError(c, invalid("title cannot be empty"))
		return
	}
	if err := h.Courses.Save(c.Request.Context(), course); err != nil {
		h.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"course": course})
}

func (h *Handler) DeleteCourse(c *gin.Context) {
	course, ok := load(h, c, h.Courses, public, true)
	if !ok {
		return
	}
	if err := h.Courses.Delete(c.Request.Context(), course.ID); err != nil {
		h.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Course deleted"})
}
