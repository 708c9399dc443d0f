package http

import (
	"context"
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"

	"warbler/domain"
	"warbler/views"
)

// The session cookie holds exactly one thing: the id of the authenticated
// user under currUserKey. Its absence means the request comes from a guest.
const (
	sessionName = "warbler"
	currUserKey = "curr_user"
)

type privateKey string

const userCtxKey privateKey = "user"

func init() {
	// Flash messages are stored in the session cookie and need to be
	// registered so the securecookie codec can encode them.
	gob.Register(views.Flash{})
}

// session returns the request's session, a fresh one if the cookie is
// missing or fails to decode.
func (s *Server) session(r *http.Request) *sessions.Session {
	sess, _ := s.sessions.Get(r, sessionName)
	return sess
}

// signIn stores the user's id in the session.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request, user *domain.User) error {
	sess := s.session(r)
	sess.Values[currUserKey] = user.ID
	return sess.Save(r, w)
}

// signOut removes the user's id from the session.
func (s *Server) signOut(w http.ResponseWriter, r *http.Request) error {
	sess := s.session(r)
	delete(sess.Values, currUserKey)
	return sess.Save(r, w)
}

// flash queues a one-shot message for the next rendered page.
func (s *Server) flash(w http.ResponseWriter, r *http.Request, category, message string) {
	sess := s.session(r)
	sess.AddFlash(views.Flash{Category: category, Message: message})
	sess.Save(r, w)
}

// flashes drains the queued flash messages and returns them for rendering.
func (s *Server) flashes(w http.ResponseWriter, r *http.Request) []views.Flash {
	sess := s.session(r)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	sess.Save(r, w)
	var out []views.Flash
	for _, f := range raw {
		if fl, ok := f.(views.Flash); ok {
			out = append(out, fl)
		}
	}
	return out
}

// The checkUser middleware resolves the session's user id to a User record
// on every request and puts it into the request context. If the id does not
// resolve (the account was deleted), the stale session entry is dropped and
// the request proceeds as a guest.
func (s *Server) checkUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := s.session(r)
		id, ok := sess.Values[currUserKey].(int)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		user, err := s.us.ByID(id)
		if err != nil {
			delete(sess.Values, currUserKey)
			sess.Save(r, w)
			next.ServeHTTP(w, r)
			return
		}
		r = r.WithContext(s.setUserInContext(r.Context(), user))
		next.ServeHTTP(w, r)
	})
}

// requireAuth guards a handler against guests. A guest gets redirected to
// the public home page with a warning flash.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := s.getUserFromContext(r.Context())
		if user == nil {
			s.flash(w, r, "danger", "Access unauthorized.")
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	}
}

func (s *Server) setUserInContext(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userCtxKey, user)
}

func (s *Server) getUserFromContext(ctx context.Context) *domain.User {
	if temp := ctx.Value(userCtxKey); temp != nil {
		if user, ok := temp.(*domain.User); ok {
			return user
		}
	}
	return nil
}
