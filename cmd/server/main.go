package main

import (
	"fmt"
	"log"
	"net/http"

	"hookrelay/internal/api"
	"hookrelay/internal/api/handlers"
	"hookrelay/internal/api/middleware"
	"hookrelay/internal/engine/dispatch"
	"hookrelay/internal/engine/endpoints"
	"hookrelay/internal/engine/routing"
	"hookrelay/internal/pkg/logger"
	"hookrelay/internal/platform/audit"
	"hookrelay/internal/platform/auth"
	"hookrelay/internal/platform/config"
	"hookrelay/internal/platform/database"
	"hookrelay/internal/platform/repositories"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Repositories
	orgRepo := repositories.NewOrganizationRepository(db)
	userRepo := repositories.NewUserRepository(db)
	endpointRepo := repositories.NewEndpointRepository(db)
	entityRepo := repositories.NewEntityRepository(db)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	auditLogger := audit.NewLogger(db)
	endpointSvc := endpoints.NewService(endpointRepo, orgRepo)
	reconciler := endpoints.NewReconciler(endpointRepo)
	resolver := routing.NewProjectResolver(entityRepo)
	matcher := routing.NewMatcher(endpointRepo, resolver)
	dispatcher := dispatch.NewDispatcher(cfg.Webhooks)

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, tokenSvc)
	endpointHandler := handlers.NewEndpointHandler(endpointSvc, reconciler, auditLogger)
	eventHandler := handlers.NewEventHandler(matcher, dispatcher)
	healthHandler := handlers.NewHealthHandler(db)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenSvc)
	orgMiddleware := middleware.NewOrgMiddleware(orgRepo)

	router := api.NewRouter(&api.Dependencies{
		AuthHandler:     authHandler,
		EndpointHandler: endpointHandler,
		EventHandler:    eventHandler,
		HealthHandler:   healthHandler,
		AuthMiddleware:  authMiddleware,
		OrgMiddleware:   orgMiddleware,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Printf("Server starting on %s", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
