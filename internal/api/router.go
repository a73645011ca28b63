package api

import (
	"github.com/gorilla/mux"

	"github.com/nooklet/nooklet/internal/api/recovery"
	"github.com/nooklet/nooklet/internal/auth"
	"github.com/nooklet/nooklet/internal/rag"
	"github.com/nooklet/nooklet/internal/services"
	"github.com/nooklet/nooklet/internal/store"
)

// RouterConfig carries the dependencies the router wires together.
type RouterConfig struct {
	Store      store.Store
	Authorizer auth.Authorizer

	// Rag is optional; when nil the /test/llm routes are not registered.
	Rag *rag.Service

	// IsHealthy backs /api/health; nil reports healthy.
	IsHealthy func() bool
}

// NewRouter creates the HTTP router with all API routes.
func NewRouter(cfg RouterConfig) *mux.Router {
	router := mux.NewRouter()
	router.Use(recovery.Middleware)

	authSvc := services.NewAuthService(cfg.Store)
	nookletSvc := services.NewNookletService(cfg.Store)
	profileSvc := services.NewProfileService(cfg.Store)

	authHandler := NewAuthHandler(authSvc)
	nookletHandler := NewNookletHandler(nookletSvc, profileSvc, cfg.Authorizer)
	healthHandler := NewHealthHandler(cfg.IsHealthy)

	// Health
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	// Auth
	router.HandleFunc("/api/v1/auth/register", authHandler.Register).Methods("POST")
	router.HandleFunc("/api/v1/auth/login", authHandler.Login).Methods("POST")
	router.HandleFunc("/api/v1/auth/logout", authHandler.Logout).Methods("POST")

	// Entry list view
	router.HandleFunc("/home", nookletHandler.Home).Methods("GET")

	// Nooklets
	router.HandleFunc("/api/v1/nooklets", nookletHandler.List).Methods("GET")
	router.HandleFunc("/api/v1/nooklets", nookletHandler.Create).Methods("POST")
	router.HandleFunc("/api/v1/nooklets/{id}", nookletHandler.Update).Methods("PUT")
	router.HandleFunc("/api/v1/nooklets/{id}", nookletHandler.Archive).Methods("DELETE")
	router.HandleFunc("/api/v1/nooklets/{id}/restore", nookletHandler.Restore).Methods("POST")

	// RAG test endpoints
	if cfg.Rag != nil {
		ragHandler := NewRagHandler(cfg.Rag)
		router.HandleFunc("/test/llm/embed-text", ragHandler.EmbedText).Methods("POST")
		router.HandleFunc("/test/llm/chat", ragHandler.Chat).Methods("POST")
	}

	return router
}
