package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brianhealey/booklist/internal/models"
)

func (h *Handlers) getView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ctrl(r).View())
}

func (h *Handlers) patchDraft(w http.ResponseWriter, r *http.Request) {
	var upd models.DraftUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, models.ErrBadRequest("invalid JSON: "+err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, ctrl(r).UpdateDraft(upd))
}

// attachPoster starts a decode and returns immediately with
// poster_pending set; the result arrives on /api/subscribe.
func (h *Handlers) attachPoster(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, models.ErrBadRequest("invalid form: "+err.Error()))
		return
	}
	name, data, err := h.readPoster(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ctrl(r).AttachPoster(name, data))
}

func (h *Handlers) clearPoster(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ctrl(r).ClearPoster())
}

func (h *Handlers) submit(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ctrl(r).Submit())
}

func (h *Handlers) cancel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ctrl(r).CancelEdit())
}

func (h *Handlers) beginEdit(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ctrl(r).BeginEdit(chi.URLParam(r, "id")))
}

func (h *Handlers) deleteBook(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ctrl(r).Delete(chi.URLParam(r, "id")))
}
