// Package authserverfake is an in-process stand-in for the auth service the client talks
// to. It issues HS256 token pairs, validates bearer tokens on protected routes and lets
// tests force failures.
package authserverfake

import (
	"net/http"
	"net/http/httptest"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// User is an account known to the fake service
type User struct {
	Username string
	Password string
	Email    string
	FullName string
	CN       string
	Groups   []string
	Inactive bool
}

type storedUser struct {
	User
	passwordHash []byte
}

// Server wraps an httptest.Server. URL is the origin to point clients at.
type Server struct {
	*httptest.Server
	mux    *http.ServeMux
	secret []byte

	lock          sync.RWMutex
	users         map[string]storedUser
	generation    int
	refreshStatus int
	calls         map[string]int
	lastAuth      map[string]string // path to Authorization header
}

// Start runs a fake service with the given users
func Start(users ...User) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		secret:   []byte("authserverfake-secret"),
		users:    make(map[string]storedUser),
		calls:    make(map[string]int),
		lastAuth: make(map[string]string),
	}
	for _, u := range users {
		s.AddUser(u)
	}
	s.initRoutes()
	s.Server = httptest.NewServer(ChainMiddleware(s.mux.ServeHTTP, s.RecordMiddleware))
	return s
}

// AddUser registers u, hashing its password
func (s *Server) AddUser(u User) {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.MinCost)
	if err != nil {
		panic("authserverfake: hashing password: " + err.Error())
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.users[u.Username] = storedUser{User: u, passwordHash: hash}
}

func (s *Server) initRoutes() {
	s.mux.HandleFunc("GET "+RouteHealth, s.HealthHandler())
	s.mux.HandleFunc("GET "+RouteLogin, s.PageHandler("Login"))
	s.mux.HandleFunc("GET "+RouteDashboard, s.PageHandler("Dashboard"))
	s.mux.HandleFunc("GET "+RouteIndex+"{$}", s.PageHandler("Index"))

	s.mux.HandleFunc("POST "+RouteAuthLogin, s.LoginHandler())
	s.mux.HandleFunc("POST "+RouteAuthRefresh, s.RefreshHandler())
	s.mux.HandleFunc("GET "+RouteAuthMe, ChainMiddleware(s.MeHandler(), s.RequireAuth))
	s.mux.HandleFunc("GET "+RouteAPIItems, ChainMiddleware(s.ItemsHandler(), s.RequireAuth))
}

// SetRefreshStatus makes /auth/refresh answer with status instead of a token pair.
// Zero restores normal behaviour.
func (s *Server) SetRefreshStatus(status int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.refreshStatus = status
}

// ExpireAccessTokens invalidates every access token issued so far
func (s *Server) ExpireAccessTokens() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.generation++
}

// Calls returns how many requests reached path
func (s *Server) Calls(path string) int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.calls[path]
}

// LastAuthorization returns the Authorization header of the latest request to path
func (s *Server) LastAuthorization(path string) string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.lastAuth[path]
}

func (s *Server) user(username string) (storedUser, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	u, ok := s.users[username]
	return u, ok
}
