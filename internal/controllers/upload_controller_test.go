package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"ecoverse/internal/middleware"
	"ecoverse/internal/models"
	"ecoverse/internal/policy"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n")

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write(content)
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/uploads", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func uploadRouter(h *Handler, caller *policy.Caller) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/uploads", func(c *gin.Context) {
		if caller != nil {
			middleware.WithCaller(c, caller)
		}
		c.Next()
	}, h.UploadImage)
	return r
}

func TestUploadImage(t *testing.T) {
	dir := t.TempDir()
	h := &Handler{
		Uploads: UploadConfig{Dir: dir, MaxBytes: 64, PublicPath: "/uploads"},
		Log:     quietLogger(),
	}
	caller := &policy.Caller{ID: 7, Role: models.RoleVolunteer}
	png := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 24)...)

	cases := []struct {
		name    string
		caller  *policy.Caller
		file    string
		content []byte
		status  int
	}{
		{"anonymous", nil, "a.png", png, http.StatusUnauthorized},
		{"png", caller, "a.png", png, http.StatusCreated},
		{"text disguised as image", caller, "a.png", []byte("hello, world"), http.StatusBadRequest},
		{"too large", caller, "big.png", append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 128)...), http.StatusRequestEntityTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			uploadRouter(h, tc.caller).ServeHTTP(rec, uploadRequest(t, tc.file, tc.content))
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if tc.status != http.StatusCreated {
				return
			}

			var body struct {
				URL string `json:"url"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !strings.HasPrefix(body.URL, "/uploads/") || !strings.HasSuffix(body.URL, ".png") {
				t.Fatalf("unexpected url %q", body.URL)
			}
			saved, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(body.URL, "/uploads/")))
			if err != nil {
				t.Fatalf("uploaded file not on disk: %v", err)
			}
			if !bytes.Equal(saved, tc.content) {
				t.Fatalf("stored bytes differ from upload")
			}
		})
	}
}

func TestUploadImageRequiresFile(t *testing.T) {
	h := &Handler{Uploads: UploadConfig{Dir: t.TempDir(), MaxBytes: 64}, Log: quietLogger()}
	req := httptest.NewRequest(http.MethodPost, "/uploads", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	uploadRouter(h, &policy.Caller{ID: 1, Role: models.RoleVolunteer}).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
