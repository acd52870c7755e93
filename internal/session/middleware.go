package session

import (
	"context"
	"net/http"

	"github.com/brianhealey/booklist/internal/controller"
)

// CookieName is the cookie carrying the session id.
const CookieName = "booklist-session"

type ctxKey struct{}

type current struct {
	id   string
	ctrl *controller.Controller
}

// Middleware resolves the session cookie to a controller, starting a new
// session when the cookie is missing or has expired.
func (r *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var id string
		if cookie, err := req.Cookie(CookieName); err == nil {
			id = cookie.Value
		}

		id, ctrl, created := r.Resolve(id)
		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(req.Context(), ctxKey{}, current{id: id, ctrl: ctrl})
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

// FromContext returns the controller resolved by Middleware.
func FromContext(ctx context.Context) (*controller.Controller, bool) {
	c, ok := ctx.Value(ctxKey{}).(current)
	return c.ctrl, ok
}

// IDFromContext returns the session id resolved by Middleware.
func IDFromContext(ctx context.Context) string {
	c, _ := ctx.Value(ctxKey{}).(current)
	return c.id
}
