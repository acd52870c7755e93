// Package api implements the HTTP surface of the book list: the HTML page,
// its form endpoints, and a JSON/SSE API over the same session controller.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/brianhealey/booklist/internal/events"
	"github.com/brianhealey/booklist/internal/models"
	"github.com/brianhealey/booklist/internal/poster"
	"github.com/brianhealey/booklist/internal/session"
	"github.com/brianhealey/booklist/internal/view"
)

// maxFormMemory caps the multipart form held in memory; larger parts spill
// to temporary files.
const maxFormMemory = 8 << 20

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	renderer *view.Renderer
	uploads  PosterReader
	info     func() models.Info
}

// Controller is the interface the handlers use to drive one session.
type Controller interface {
	View() models.View
	UpdateDraft(upd models.DraftUpdate) models.View
	BeginEdit(id string) models.View
	Submit() models.View
	CancelEdit() models.View
	Delete(id string) models.View
	AttachPoster(name string, data []byte) models.View
	ClearPoster() models.View
	Wait(ctx context.Context) error
	Events() *events.Bus
}

// PosterReader reads an uploaded poster while enforcing the size limit.
type PosterReader interface {
	Read(r io.Reader) ([]byte, error)
}

// ctrl returns the session controller resolved by session.Middleware.
func ctrl(r *http.Request) Controller {
	c, ok := session.FromContext(r.Context())
	if !ok {
		return nil
	}
	return c
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an AppError as a JSON response.
func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		w.WriteHeader(appErr.Status)
		_ = json.NewEncoder(w).Encode(appErr)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(models.ErrInternal(err.Error()))
}

// parseForm parses urlencoded and multipart bodies alike.
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(maxFormMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// draftFields collects the draft text fields present in the form body.
// Absent fields are left nil so they do not overwrite the draft.
func draftFields(r *http.Request) models.DraftUpdate {
	var upd models.DraftUpdate
	field := func(name string) *string {
		vals, ok := r.PostForm[name]
		if !ok {
			return nil
		}
		v := ""
		if len(vals) > 0 {
			v = vals[0]
		}
		return &v
	}
	upd.Title = field("title")
	upd.Author = field("author")
	upd.Details = field("details")
	return upd
}

// readPoster returns the uploaded poster part. A missing or empty part (the
// picker was cancelled) yields no data and no error.
func (h *Handlers) readPoster(r *http.Request) (string, []byte, error) {
	file, header, err := r.FormFile("poster")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil, nil
		}
		return "", nil, models.ErrBadRequest("invalid poster upload: " + err.Error())
	}
	defer file.Close()

	data, err := h.uploads.Read(file)
	if err != nil {
		if errors.Is(err, poster.ErrTooLarge) {
			return "", nil, models.ErrTooLarge(err.Error())
		}
		return "", nil, models.ErrBadRequest(err.Error())
	}
	return header.Filename, data, nil
}

// redirectHome sends the browser back to the page after a form post.
func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// logFormError records a form failure; form flows never show errors.
func logFormError(r *http.Request, err error) {
	slog.Warn("api: form request failed", "path", r.URL.Path, "err", err)
}
