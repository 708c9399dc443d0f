package http

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"warbler/domain"
	"warbler/errs"
)

func (s *Server) registerAuthRoutes(r *mux.Router) {
	r.HandleFunc("/", s.handleHome).Methods("GET")
	r.HandleFunc("/signup", s.handleSignupForm).Methods("GET")
	r.HandleFunc("/signup", s.handleSignup).Methods("POST")
	r.HandleFunc("/login", s.handleLoginForm).Methods("GET")
	r.HandleFunc("/login", s.handleLogin).Methods("POST")
	r.HandleFunc("/logout", s.handleLogout).Methods("GET")
}

// signupForm carries the re-displayed form values and the validation
// message when a signup attempt is rejected.
type signupForm struct {
	Username string
	Email    string
	ImageURL string
	Error    string
}

type loginForm struct {
	Username string
	Error    string
}

// handleHome handles the route "GET /". Guests get the public landing page,
// authenticated users get their home feed.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	user := s.getUserFromContext(r.Context())
	if user == nil {
		s.render(w, r, s.homeAnonView, struct{}{})
		return
	}
	feed, err := s.ms.Feed(user.ID)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, s.homeView, struct{ Messages []domain.Message }{feed})
}

// handleSignupForm handles the route "GET /signup".
func (s *Server) handleSignupForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, s.signupView, signupForm{})
}

// handleSignup handles the route "POST /signup". It creates the user with a
// hashed password and signs them in. Validation and uniqueness failures
// re-render the form with a message instead of erroring out.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	user := domain.User{
		Username: r.PostFormValue("username"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		ImageURL: r.PostFormValue("image_url"),
	}
	if err := s.us.Create(&user); err != nil {
		switch errs.ErrorCode(err) {
		case errs.EINVALID, errs.ECONFLICT:
			s.render(w, r, s.signupView, signupForm{
				Username: user.Username,
				Email:    user.Email,
				ImageURL: user.ImageURL,
				Error:    errs.ErrorMessage(err),
			})
		default:
			s.renderError(w, r, err)
		}
		return
	}
	if err := s.signIn(w, r, &user); err != nil {
		s.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleLoginForm handles the route "GET /login".
func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, s.loginView, loginForm{})
}

// handleLogin handles the route "POST /login". A failed credential check
// re-renders the form with one generic message, no matter whether the
// username or the password was wrong.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	user, err := s.us.Authenticate(username, r.PostFormValue("password"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	if user == nil {
		s.render(w, r, s.loginView, loginForm{
			Username: username,
			Error:    "Invalid credentials.",
		})
		return
	}
	if err := s.signIn(w, r, user); err != nil {
		s.renderError(w, r, err)
		return
	}
	s.flash(w, r, "success", fmt.Sprintf("Hello, %s!", user.Username))
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleLogout handles the route "GET /logout".
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.signOut(w, r); err != nil {
		s.renderError(w, r, err)
		return
	}
	s.flash(w, r, "success", "You have successfully logged out.")
	http.Redirect(w, r, "/login", http.StatusFound)
}
