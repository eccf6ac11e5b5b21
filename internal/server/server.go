package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/grobuddy/internal/handler"
	"github.com/dukerupert/grobuddy/internal/middleware"
	"github.com/dukerupert/grobuddy/internal/password"
	"github.com/dukerupert/grobuddy/internal/store"
	ws "github.com/dukerupert/grobuddy/internal/websocket"
)

// Options tunes the server. Zero values fall back to production defaults.
type Options struct {
	SessionTTL     time.Duration
	LoginRateLimit int
	CookieSecure   bool
	Hasher         password.Hasher

	// WSOriginPatterns lists extra browser origins allowed on /ws.
	WSOriginPatterns []string
}

type Server struct {
	db             *sql.DB
	hub            *ws.Hub
	authH          *handler.AuthHandler
	categoryH      *handler.CategoryHandler
	groceryH       *handler.GroceryHandler
	sessionStore   *store.SessionStore
	userStore      *store.UserStore
	rateLimiter    *middleware.RateLimiter
	loginRateLimit int
	wsOrigins      []string
	logger         *slog.Logger
}

func New(db *sql.DB, opts Options, logger *slog.Logger) *Server {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * 24 * time.Hour
	}
	if opts.LoginRateLimit <= 0 {
		opts.LoginRateLimit = 10
	}
	if opts.Hasher == nil {
		opts.Hasher = password.NewBcrypt()
	}

	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db, opts.SessionTTL)
	categoryStore := store.NewCategoryStore(db)
	groceryStore := store.NewGroceryStore(db)

	return &Server{
		db:             db,
		hub:            hub,
		authH:          handler.NewAuthHandler(userStore, sessionStore, opts.Hasher, opts.CookieSecure, logger.With("component", "auth")),
		categoryH:      handler.NewCategoryHandler(categoryStore, logger.With("component", "category")),
		groceryH:       handler.NewGroceryHandler(groceryStore, categoryStore, hub, logger.With("component", "grocery")),
		sessionStore:   sessionStore,
		userStore:      userStore,
		rateLimiter:    middleware.NewRateLimiter(),
		loginRateLimit: opts.LoginRateLimit,
		wsOrigins:      opts.WSOriginPatterns,
		logger:         logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes, wrapped with RequireAuth
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore, s.logger.With("component", "auth"))
	outerMux.Handle("/", authMiddleware(protectedMux))

	httpLogger := s.logger.With("component", "http")
	var h http.Handler = outerMux
	h = middleware.RequestLogger(httpLogger)(h)
	h = middleware.Recover(httpLogger)(h)
	h = middleware.RequestID(h)
	return h
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write([]byte(`{"status":"` + status + `"}`))
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return r.URL.Path + "|" + middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, s.loginRateLimit, time.Minute)
	return rl(h).ServeHTTP
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Account routes
	mux.HandleFunc("POST /logout", s.authH.Logout)
	mux.HandleFunc("GET /profile", s.authH.Profile)
	mux.HandleFunc("PATCH /accounts/{username}", s.authH.EditAccount)
	mux.HandleFunc("DELETE /accounts/{username}", s.authH.DeleteAccount)

	// Category routes
	mux.HandleFunc("GET /categories", s.categoryH.List)
	mux.HandleFunc("POST /categories", s.categoryH.Create)
	mux.HandleFunc("GET /categories/suggest", s.categoryH.Suggest)
	mux.HandleFunc("DELETE /categories/{id}", s.categoryH.Delete)

	// Grocery item routes
	mux.HandleFunc("POST /items", s.groceryH.CreateItem)
	mux.HandleFunc("GET /items", s.groceryH.ListItems)
	mux.HandleFunc("GET /items/search", s.groceryH.SearchItems)
	mux.HandleFunc("PATCH /items/{id}", s.groceryH.UpdateItem)
	mux.HandleFunc("DELETE /items/{id}", s.groceryH.DeleteItem)
	mux.HandleFunc("PATCH /items/{id}/purchased", s.groceryH.SetPurchased)
	mux.HandleFunc("POST /items/purchase-all", s.groceryH.PurchaseAll)
	mux.HandleFunc("GET /items/purchased/recent", s.groceryH.RecentPurchases)
	mux.HandleFunc("DELETE /items/purchased", s.groceryH.ClearPurchased)
	mux.HandleFunc("GET /items/cost-total", s.groceryH.TotalCost)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.wsOrigins, s.logger.With("component", "websocket")))
}
