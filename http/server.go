package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"

	"warbler/domain"
	"warbler/errs"
	"warbler/views"
)

// Server provides most of the http functionality of this app, namely routing,
// request handling, and middleware. It resolves the session user, performs
// authorization checks and renders HTML before handing the actual data work
// over to one of the crud services.
type Server struct {
	router   *mux.Router
	sessions *sessions.CookieStore
	metrics  *Metrics

	us domain.UserService
	ms domain.MessageService
	fs domain.FollowService
	ls domain.LikeService

	homeView        *views.View
	homeAnonView    *views.View
	signupView      *views.View
	loginView       *views.View
	usersIndexView  *views.View
	userShowView    *views.View
	followingView   *views.View
	followersView   *views.View
	likesView       *views.View
	messageNewView  *views.View
	messageShowView *views.View
	profileEditView *views.View
	notFoundView    *views.View
	errorView       *views.View
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the app services passed in.
// CSRF protection is expected to be on in production, tests switch it off.
func NewServer(
	isProd bool,
	enableCSRF bool,
	sessionKey string,
	csrfKey string,
	us domain.UserService,
	ms domain.MessageService,
	fs domain.FollowService,
	ls domain.LikeService,
) *Server {

	s := &Server{
		router:   mux.NewRouter(),
		sessions: sessions.NewCookieStore([]byte(sessionKey)),
		metrics:  InitMetrics(),
		us:       us,
		ms:       ms,
		fs:       fs,
		ls:       ls,

		homeView:        views.NewView("home"),
		homeAnonView:    views.NewView("home_anon"),
		signupView:      views.NewView("signup"),
		loginView:       views.NewView("login"),
		usersIndexView:  views.NewView("users_index"),
		userShowView:    views.NewView("users_show"),
		followingView:   views.NewView("following"),
		followersView:   views.NewView("followers"),
		likesView:       views.NewView("likes"),
		messageNewView:  views.NewView("message_new"),
		messageShowView: views.NewView("message_show"),
		profileEditView: views.NewView("profile_edit"),
		notFoundView:    views.NewView("not_found"),
		errorView:       views.NewView("error"),
	}
	s.sessions.Options.HttpOnly = true
	s.sessions.Options.Secure = isProd

	// Register routes of the auth system.
	s.registerAuthRoutes(s.router)

	// Register routes of the crud system.
	s.registerUserRoutes(s.router)
	s.registerMessageRoutes(s.router)

	// Static assets and prometheus metrics.
	s.router.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
	s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")

	// Set up middleware that needs to run on every request.
	s.router.Use(s.logRequest, s.instrument, s.checkUser)
	if enableCSRF {
		csrfMw := csrf.Protect([]byte(csrfKey), csrf.Secure(isProd), csrf.Path("/"))
		s.router.Use(csrfMw)
	}
	return s
}

// ServeHTTP makes the Server usable anywhere an http.Handler is expected.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run starts to listen and serve on the specified port.
func (s *Server) Run(port int) {
	logrus.WithField("port", port).Info("warbler listening")
	logrus.Fatal(http.ListenAndServe(":"+strconv.Itoa(port), s.router))
}

// The logRequest middleware logs every request with method and path.
func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logrus.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Info("request")
		next.ServeHTTP(w, r)
	})
}

// render executes the given view with the session user, any pending flash
// messages and the CSRF form field filled in around the page data.
func (s *Server) render(w http.ResponseWriter, r *http.Request, v *views.View, yield interface{}) {
	data := views.Data{
		User:      s.getUserFromContext(r.Context()),
		Flashes:   s.flashes(w, r),
		CSRFField: csrf.TemplateField(r),
		Yield:     yield,
	}
	if err := v.Render(w, &data); err != nil {
		errs.LogError(r, err)
	}
}

// renderError presents a failed operation to the user. Not-found errors on
// page loads get the 404 page. Everything the user can act on (validation,
// authorization, not-found targets of a POST) becomes a flash message plus a
// redirect. Anything else is logged and hidden behind the 500 page.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	code := errs.ErrorCode(err)
	switch {
	case code == errs.ENOTFOUND && r.Method == http.MethodGet:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		s.render(w, r, s.notFoundView, struct{ Message string }{errs.ErrorMessage(err)})
	case code == errs.ENOTFOUND, code == errs.EINVALID, code == errs.ECONFLICT, code == errs.EUNAUTHORIZED:
		s.flash(w, r, "danger", errs.ErrorMessage(err))
		http.Redirect(w, r, "/", http.StatusFound)
	default:
		errs.LogError(r, err)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		s.render(w, r, s.errorView, nil)
	}
}
