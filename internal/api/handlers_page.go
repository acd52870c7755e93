package api

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// page renders the book list for the current session.
func (h *Handlers) page(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, ctrl(r).View()); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// formDraft stores the typed fields without committing them.
func (h *Handlers) formDraft(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		logFormError(r, err)
		redirectHome(w, r)
		return
	}
	ctrl(r).UpdateDraft(draftFields(r))
	redirectHome(w, r)
}

// formAttachPoster keeps the typed fields and starts decoding the chosen
// file. The page reloads once the decode lands.
func (h *Handlers) formAttachPoster(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		logFormError(r, err)
		redirectHome(w, r)
		return
	}
	c := ctrl(r)
	c.UpdateDraft(draftFields(r))
	name, data, err := h.readPoster(r)
	if err != nil {
		logFormError(r, err)
		redirectHome(w, r)
		return
	}
	c.AttachPoster(name, data)
	redirectHome(w, r)
}

func (h *Handlers) formClearPoster(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		logFormError(r, err)
		redirectHome(w, r)
		return
	}
	c := ctrl(r)
	c.UpdateDraft(draftFields(r))
	c.ClearPoster()
	redirectHome(w, r)
}

// formSubmit commits the draft. A file posted together with the fields is
// decoded first so it is part of the committed record.
func (h *Handlers) formSubmit(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		logFormError(r, err)
		redirectHome(w, r)
		return
	}
	c := ctrl(r)
	c.UpdateDraft(draftFields(r))
	name, data, err := h.readPoster(r)
	if err != nil {
		logFormError(r, err)
	} else if len(data) > 0 {
		c.AttachPoster(name, data)
		if err := c.Wait(r.Context()); err != nil {
			logFormError(r, err)
			return
		}
	}
	c.Submit()
	redirectHome(w, r)
}

func (h *Handlers) formCancel(w http.ResponseWriter, r *http.Request) {
	ctrl(r).CancelEdit()
	redirectHome(w, r)
}

func (h *Handlers) formEdit(w http.ResponseWriter, r *http.Request) {
	ctrl(r).BeginEdit(chi.URLParam(r, "id"))
	redirectHome(w, r)
}

func (h *Handlers) formDelete(w http.ResponseWriter, r *http.Request) {
	ctrl(r).Delete(chi.URLParam(r, "id"))
	redirectHome(w, r)
}
