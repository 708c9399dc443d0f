package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"warbler/domain"
	"warbler/errs"
)

func (s *Server) registerUserRoutes(r *mux.Router) {
	r.HandleFunc("/users", s.handleUsersIndex).Methods("GET")
	r.HandleFunc("/users/profile", s.requireAuth(s.handleProfileForm)).Methods("GET")
	r.HandleFunc("/users/profile", s.requireAuth(s.handleProfileUpdate)).Methods("POST")
	r.HandleFunc("/users/delete", s.requireAuth(s.handleDeleteUser)).Methods("POST")
	r.HandleFunc("/users/follow/{id:[0-9]+}", s.requireAuth(s.handleCreateFollow)).Methods("POST")
	r.HandleFunc("/users/stop-following/{id:[0-9]+}", s.requireAuth(s.handleDeleteFollow)).Methods("POST")
	r.HandleFunc("/users/{id:[0-9]+}", s.handleUserShow).Methods("GET")
	r.HandleFunc("/users/{id:[0-9]+}/following", s.requireAuth(s.handleFollowing)).Methods("GET")
	r.HandleFunc("/users/{id:[0-9]+}/followers", s.requireAuth(s.handleFollowers)).Methods("GET")
	r.HandleFunc("/users/{id:[0-9]+}/likes", s.requireAuth(s.handleUserLikes)).Methods("GET")
}

// profileForm carries the re-displayed form values and the validation
// message when a profile edit is rejected.
type profileForm struct {
	Username       string
	Email          string
	ImageURL       string
	HeaderImageURL string
	Location       string
	Bio            string
	Error          string
}

// userIdParam parses the {id} route variable. The route pattern constrains
// it to digits already, strconv failure here means an id out of int range.
func userIdParam(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return 0, errs.Errorf(errs.EINVALID, "Invalid Id format.")
	}
	return id, nil
}

// handleUsersIndex handles the route "GET /users". An optional query
// parameter q filters the listing by username substring.
func (s *Server) handleUsersIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	users, err := s.us.Search(q)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, s.usersIndexView, struct {
		Query string
		Users []domain.User
	}{q, users})
}

// handleUserShow handles the route "GET /users/:id". It shows the profile
// with that user's own messages only, newest first. The follow/unfollow and
// edit-profile controls are rendered depending on who is looking.
func (s *Server) handleUserShow(w http.ResponseWriter, r *http.Request) {
	id, err := userIdParam(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	profile, err := s.us.ByID(id)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	messages, err := s.ms.ByUserID(profile.ID)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	isFollowing := false
	if user := s.getUserFromContext(r.Context()); user != nil && user.ID != profile.ID {
		isFollowing = s.fs.IsFollowing(user.ID, profile.ID)
	}
	s.render(w, r, s.userShowView, struct {
		Profile     *domain.User
		Messages    []domain.Message
		IsFollowing bool
	}{profile, messages, isFollowing})
}

// handleFollowing handles the route "GET /users/:id/following".
func (s *Server) handleFollowing(w http.ResponseWriter, r *http.Request) {
	id, err := userIdParam(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	profile, err := s.us.ByID(id)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	users, err := s.fs.Following(profile.ID)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, s.followingView, struct {
		Profile *domain.User
		Users   []domain.User
	}{profile, users})
}

// handleFollowers handles the route "GET /users/:id/followers".
func (s *Server) handleFollowers(w http.ResponseWriter, r *http.Request) {
	id, err := userIdParam(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	profile, err := s.us.ByID(id)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	users, err := s.fs.Followers(profile.ID)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, s.followersView, struct {
		Profile *domain.User
		Users   []domain.User
	}{profile, users})
}

// handleUserLikes handles the route "GET /users/:id/likes". It lists the
// messages the user has liked, regardless of who wrote them.
func (s *Server) handleUserLikes(w http.ResponseWriter, r *http.Request) {
	id, err := userIdParam(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	profile, err := s.us.ByID(id)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	messages, err := s.ls.MessagesByUserID(profile.ID)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, s.likesView, struct {
		Profile  *domain.User
		Messages []domain.Message
	}{profile, messages})
}

// handleCreateFollow handles the route "POST /users/follow/:id".
// The session user starts following the user in the url.
func (s *Server) handleCreateFollow(w http.ResponseWriter, r *http.Request) {
	id, err := userIdParam(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	user := s.getUserFromContext(r.Context())
	follow := domain.Follow{FollowedID: id, FollowerID: user.ID}
	if err := s.fs.Create(&follow); err != nil {
		s.renderError(w, r, err)
		return
	}
	s.metrics.FollowRequests.Inc()
	http.Redirect(w, r, fmt.Sprintf("/users/%d/following", user.ID), http.StatusFound)
}

// handleDeleteFollow handles the route "POST /users/stop-following/:id".
// The session user stops following the user in the url.
func (s *Server) handleDeleteFollow(w http.ResponseWriter, r *http.Request) {
	id, err := userIdParam(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	user := s.getUserFromContext(r.Context())
	follow := domain.Follow{FollowedID: id, FollowerID: user.ID}
	if err := s.fs.Delete(&follow); err != nil {
		s.renderError(w, r, err)
		return
	}
	s.metrics.UnfollowRequests.Inc()
	http.Redirect(w, r, fmt.Sprintf("/users/%d/following", user.ID), http.StatusFound)
}

// handleProfileForm handles the route "GET /users/profile". It shows the
// edit form for the session user's own profile.
func (s *Server) handleProfileForm(w http.ResponseWriter, r *http.Request) {
	user := s.getUserFromContext(r.Context())
	s.render(w, r, s.profileEditView, profileForm{
		Username:       user.Username,
		Email:          user.Email,
		ImageURL:       user.ImageURL,
		HeaderImageURL: user.HeaderImageURL,
		Location:       user.Location,
		Bio:            user.Bio,
	})
}

// handleProfileUpdate handles the route "POST /users/profile". The submitted
// password has to check out against the session user's own credentials
// before any edit is applied. Only the session user's profile can ever be
// the target, there is no id in the route.
func (s *Server) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	user := s.getUserFromContext(r.Context())
	authed, err := s.us.Authenticate(user.Username, r.PostFormValue("password"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	if authed == nil {
		s.flash(w, r, "danger", "Access unauthorized.")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	user.Username = r.PostFormValue("username")
	user.Email = r.PostFormValue("email")
	user.ImageURL = r.PostFormValue("image_url")
	user.HeaderImageURL = r.PostFormValue("header_image_url")
	user.Location = r.PostFormValue("location")
	user.Bio = r.PostFormValue("bio")
	if err := s.us.Update(user); err != nil {
		switch errs.ErrorCode(err) {
		case errs.EINVALID, errs.ECONFLICT:
			s.render(w, r, s.profileEditView, profileForm{
				Username:       user.Username,
				Email:          user.Email,
				ImageURL:       user.ImageURL,
				HeaderImageURL: user.HeaderImageURL,
				Location:       user.Location,
				Bio:            user.Bio,
				Error:          errs.ErrorMessage(err),
			})
		default:
			s.renderError(w, r, err)
		}
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/users/%d", user.ID), http.StatusFound)
}

// handleDeleteUser handles the route "POST /users/delete". It deletes the
// session user's account together with their messages, likes and follow
// edges, then ends the session.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	user := s.getUserFromContext(r.Context())
	if err := s.us.Delete(user.ID); err != nil {
		s.renderError(w, r, err)
		return
	}
	if err := s.signOut(w, r); err != nil {
		s.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/signup", http.StatusFound)
}
