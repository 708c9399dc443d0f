package http

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"warbler/domain"
	"warbler/errs"
)

func (s *Server) registerMessageRoutes(r *mux.Router) {
	r.HandleFunc("/messages/new", s.requireAuth(s.handleNewMessageForm)).Methods("GET")
	r.HandleFunc("/messages/new", s.requireAuth(s.handleCreateMessage)).Methods("POST")
	r.HandleFunc("/messages/{id:[0-9]+}", s.handleShowMessage).Methods("GET")
	r.HandleFunc("/messages/{id:[0-9]+}/delete", s.requireAuth(s.handleDeleteMessage)).Methods("POST")

	// Liking is a pure toggle: the same POST likes an unliked message and
	// unlikes a liked one.
	r.HandleFunc("/users/add_like/{id:[0-9]+}", s.requireAuth(s.handleToggleLike)).Methods("POST")
}

// messageForm carries the re-displayed text and the validation message when
// a message post is rejected.
type messageForm struct {
	Text  string
	Error string
}

// handleNewMessageForm handles the route "GET /messages/new".
func (s *Server) handleNewMessageForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, s.messageNewView, messageForm{})
}

// handleCreateMessage handles the route "POST /messages/new". The new
// message is always owned by the session user.
func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	user := s.getUserFromContext(r.Context())
	message := domain.Message{
		UserID: user.ID,
		Text:   r.PostFormValue("text"),
	}
	if err := s.ms.Create(&message); err != nil {
		if errs.ErrorCode(err) == errs.EINVALID {
			s.render(w, r, s.messageNewView, messageForm{
				Text:  message.Text,
				Error: errs.ErrorMessage(err),
			})
			return
		}
		s.renderError(w, r, err)
		return
	}
	s.metrics.MessagesSent.Inc()
	http.Redirect(w, r, fmt.Sprintf("/users/%d", user.ID), http.StatusFound)
}

// handleShowMessage handles the route "GET /messages/:id". Anyone may view
// a single message.
func (s *Server) handleShowMessage(w http.ResponseWriter, r *http.Request) {
	id, err := userIdParam(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	message, err := s.ms.ByID(id)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	likeCount, err := s.ls.CountByMessageID(message.ID)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	isLiked := false
	if user := s.getUserFromContext(r.Context()); user != nil {
		isLiked = s.ls.IsLiked(user.ID, message.ID)
	}
	s.render(w, r, s.messageShowView, struct {
		Message   *domain.Message
		LikeCount int
		IsLiked   bool
	}{message, likeCount, isLiked})
}

// handleDeleteMessage handles the route "POST /messages/:id/delete".
// Only the owner may delete a message.
func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, err := userIdParam(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	message, err := s.ms.ByID(id)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	user := s.getUserFromContext(r.Context())
	if message.UserID != user.ID {
		s.flash(w, r, "danger", "Access unauthorized.")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if err := s.ms.Delete(message); err != nil {
		s.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/users/%d", user.ID), http.StatusFound)
}

// handleToggleLike handles the route "POST /users/add_like/:id". It flips
// the like state of the session user for the message in the url.
func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	id, err := userIdParam(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	user := s.getUserFromContext(r.Context())
	if _, err := s.ls.Toggle(user.ID, id); err != nil {
		s.renderError(w, r, err)
		return
	}
	s.metrics.LikeToggles.Inc()
	redirect := r.Referer()
	if redirect == "" {
		redirect = "/"
	}
	http.Redirect(w, r, redirect, http.StatusFound)
}
