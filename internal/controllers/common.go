package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"ecoverse/internal/apperr"
	"ecoverse/internal/middleware"
	"ecoverse/internal/models"
	"ecoverse/internal/policy"
	"ecoverse/internal/store"
)

// Repository is the storage a handler needs for one resource.
type Repository[T any] interface {
	Create(ctx context.Context, record *T) error
	Get(ctx context.Context, id uint) (*T, error)
	List(ctx context.Context, opts store.ListOptions) ([]T, int64, error)
	Count(ctx context.Context, scope policy.Scope) (int64, error)
	Save(ctx context.Context, record *T) error
	Delete(ctx context.Context, id uint) error
}

type UserRepository interface {
	Repository[models.User]
	ByEmail(ctx context.Context, email string) (*models.User, error)
}

var (
	// owned resources: sign-ups, reports, accounts
	private policy.Policy = policy.Ownership{}
	// events and courses
	public policy.Policy = policy.Public{}
)

// Handler serves every resource. Dependencies are injected; nothing is read
// from package globals.
type Handler struct {
	Users   UserRepository
	Events  Repository[models.Event]
	Courses Repository[models.Course]
	Signups Repository[models.Signup]
	Reports Repository[models.Report]
	Tokens  *middleware.Tokens
	Uploads UploadConfig
	Log     *logrus.Logger
}

func NewHandler(st *store.Store, tokens *middleware.Tokens, uploads UploadConfig, log *logrus.Logger) *Handler {
	return &Handler{
		Users:   st.Users,
		Events:  st.Events,
		Courses: st.Courses,
		Signups: st.Signups,
		Reports: st.Reports,
		Tokens:  tokens,
		Uploads: uploads,
		Log:     log,
	}
}

type errorKind struct {
	err    error
	status int
	code   string
}

var errorKinds = []errorKind{
	{apperr.ErrAuthentication, http.StatusUnauthorized, "AUTHENTICATION_REQUIRED"},
	{apperr.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{apperr.ErrAccountDeactivated, http.StatusForbidden, "ACCOUNT_DEACTIVATED"},
	{apperr.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{apperr.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{apperr.ErrConflict, http.StatusConflict, "CONFLICT"},
	{apperr.ErrInvalidInput, http.StatusBadRequest, "INVALID_ARGUMENT"},
	{apperr.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
}

// WriteError is the only place errors become HTTP responses.
func (h *Handler) WriteError(c *gin.Context, err error) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			if k.status == http.StatusForbidden {
				h.logger().WithFields(logrus.Fields{
					"caller": callerID(c),
					"path":   c.Request.URL.Path,
				}).Debug(err.Error())
			}
			c.AbortWithStatusJSON(k.status, gin.H{"error": err.Error(), "code": k.code})
			return
		}
	}
	h.logger().WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": "INTERNAL"})
}

func (h *Handler) logger() *logrus.Logger {
	if h.Log == nil {
		return logrus.StandardLogger()
	}
	return h.Log
}

func callerID(c *gin.Context) uint {
	if caller := middleware.CallerFrom(c); caller != nil {
		return caller.ID
	}
	return 0
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{apperr.ErrInvalidInput}, args...)...)
}

func (h *Handler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.WriteError(c, invalid("%v", err))
		return false
	}
	return true
}

func idParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, invalid("id must be a positive integer")
	}
	return uint(id), nil
}

// load fetches the record named by :id and checks it against p: Visible for
// reads, MayMutate for writes. A missing record is 404; an existing one the
// caller may not touch is 403.
func load[T policy.Owned](h *Handler, c *gin.Context, repo Repository[T], p policy.Policy, write bool) (*T, bool) {
	id, err := idParam(c)
	if err != nil {
		h.WriteError(c, err)
		return nil, false
	}
	record, err := repo.Get(c.Request.Context(), id)
	if err != nil {
		h.WriteError(c, err)
		return nil, false
	}
	caller := middleware.CallerFrom(c)
	if write {
		err = policy.Authorize(p, *record, caller)
	} else {
		err = policy.AuthorizeRead(p, *record, caller)
	}
	if err != nil {
		h.WriteError(c, err)
		return nil, false
	}
	return record, true
}

type pageInfo struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

func listOptions(c *gin.Context) store.ListOptions {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = store.DefaultLimit
	}
	if limit > store.MaxLimit {
		limit = store.MaxLimit
	}
	if page > store.MaxPage {
		page = store.MaxPage
	}
	return store.ListOptions{Page: page, Limit: limit, Search: c.Query("search")}
}

// list returns the page of records scope allows, passed once more through
// the policy so storage and policy can never disagree.
func list[T policy.Owned](h *Handler, c *gin.Context, repo Repository[T], p policy.Policy, caller *policy.Caller) ([]T, pageInfo, bool) {
	opts := listOptions(c)
	opts.Scope = p.Scope(caller)
	records, total, err := repo.List(c.Request.Context(), opts)
	if err != nil {
		h.WriteError(c, err)
		return nil, pageInfo{}, false
	}
	return policy.Filter(p, records, caller), pageInfo{Page: opts.Page, Limit: opts.Limit, Total: total}, true
}

func writePage(c *gin.Context, data any, page pageInfo) {
	c.JSON(http.StatusOK, gin.H{"data": data, "pagination": page})
}

// mustCaller is for routes behind RequireAuth.
func (h *Handler) mustCaller(c *gin.Context) (*policy.Caller, bool) {
	caller := middleware.CallerFrom(c)
	if caller == nil {
		h.WriteError(c, apperr.ErrAuthentication)
		return nil, false
	}
	return caller, true
}
