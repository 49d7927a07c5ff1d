package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"ecoverse/internal/middleware"
	"ecoverse/internal/policy"
)

// Summary backs the admin dashboard.
func (h *Handler) Summary(c *gin.Context) {
	ctx := c.Request.Context()
	scope := private.Scope(middleware.CallerFrom(c))

	counters := []struct {
		key   string
		count func(context.Context, policy.Scope) (int64, error)
	}{
		{"users", h.Users.Count},
		{"events", h.Events.Count},
		{"courses", h.Courses.Count},
		{"signups", h.Signups.Count},
		{"reports", h.Reports.Count},
	}

	totals := make(gin.H, len(counters))
	for _, ctr := range counters {
		n, err := ctr.count(ctx, scope)
		if err != nil {
			h.WriteError(c, err)
			return
		}
		totals[ctr.key] = n
	}
	c.JSON(http.StatusOK, gin.H{"data": totals})
}
