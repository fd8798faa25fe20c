package routes

import (
	"net/http"

	"github.com/oseikb/bookline/internal/api/handlers"
	"github.com/oseikb/bookline/internal/api/middleware"
	"github.com/oseikb/bookline/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	authHandler     *handlers.AuthHandler
	providerHandler *handlers.ProviderHandler
	serviceHandler  *handlers.ServiceHandler
	bookingHandler  *handlers.BookingHandler

	authMiddleware   func(http.Handler) http.Handler
	loginRateLimiter *middleware.RateLimiter
	cacheMiddleware  *middleware.CacheMiddleware
	allowedOrigins   string
	metrics          *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	authHandler *handlers.AuthHandler,
	providerHandler *handlers.ProviderHandler,
	serviceHandler *handlers.ServiceHandler,
	bookingHandler *handlers.BookingHandler,
	authenticator middleware.Authenticator,
	loginRateLimiter *middleware.RateLimiter,
	cacheMiddleware *middleware.CacheMiddleware,
	allowedOrigins string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:              http.NewServeMux(),
		authHandler:      authHandler,
		providerHandler:  providerHandler,
		serviceHandler:   serviceHandler,
		bookingHandler:   bookingHandler,
		authMiddleware:   middleware.AuthMiddleware(authenticator),
		loginRateLimiter: loginRateLimiter,
		cacheMiddleware:  cacheMiddleware,
		allowedOrigins:   allowedOrigins,
		metrics:          metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Auth endpoints
	r.mux.HandleFunc("POST /auth/register", r.authHandler.Register)
	login := http.HandlerFunc(r.authHandler.Login)
	if r.loginRateLimiter != nil {
		r.mux.Handle("POST /auth/login", r.loginRateLimiter.Middleware(login))
	} else {
		r.mux.Handle("POST /auth/login", login)
	}

	// Public catalog and slot endpoints
	r.mux.HandleFunc("GET /api/providers", r.providerHandler.List)
	r.mux.HandleFunc("GET /api/providers/{id}/slots", r.providerHandler.GetSlots)
	r.mux.HandleFunc("GET /api/services", r.serviceHandler.List)

	// Authenticated endpoints
	r.authed("GET /auth/me", r.authHandler.Me)
	r.authed("POST /api/bookings", r.bookingHandler.Create)
	r.authed("GET /api/my/bookings", r.bookingHandler.ListMine)
	r.authed("POST /api/bookings/{id}/cancel", r.bookingHandler.Cancel)

	// Admin endpoints
	r.admin("GET /api/admin/bookings", r.bookingHandler.AdminList)
	r.admin("DELETE /api/admin/bookings/{id}", r.bookingHandler.AdminDelete)

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS must be outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	if r.metrics != nil {
		handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	}

	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}

func (r *Router) authed(pattern string, h http.HandlerFunc) {
	r.mux.Handle(pattern, r.authMiddleware(h))
}

func (r *Router) admin(pattern string, h http.HandlerFunc) {
	r.mux.Handle(pattern, r.authMiddleware(middleware.RequireAdmin(h)))
}
