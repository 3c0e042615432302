package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	apiContext "hookrelay/internal/api/context"
	"hookrelay/internal/api/handlers"
	"hookrelay/internal/api/middleware"
)

type Dependencies struct {
	AuthHandler     *handlers.AuthHandler
	EndpointHandler *handlers.EndpointHandler
	EventHandler    *handlers.EventHandler
	HealthHandler   *handlers.HealthHandler
	AuthMiddleware  *middleware.AuthMiddleware
	OrgMiddleware   *middleware.OrgMiddleware
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	router.GET("/healthz", wrap(deps.HealthHandler.Check))
	router.POST("/api/v1/auth/login", wrap(deps.AuthHandler.Login))

	authMid := deps.AuthMiddleware
	orgMid := deps.OrgMiddleware

	// Action catalog
	router.GET("/api/v1/actions",
		chain(deps.EndpointHandler.Catalog, authMid.Handle))

	// Endpoint management
	router.POST("/api/v1/webhooks",
		chain(deps.EndpointHandler.Create, authMid.Handle, orgMid.Handle))
	router.GET("/api/v1/webhooks",
		chain(deps.EndpointHandler.List, authMid.Handle, orgMid.Handle))
	router.GET("/api/v1/webhooks/:endpoint_id",
		chain(deps.EndpointHandler.Get, authMid.Handle, orgMid.Handle))
	router.PATCH("/api/v1/webhooks/:endpoint_id",
		chain(deps.EndpointHandler.Update, authMid.Handle, orgMid.Handle))
	router.DELETE("/api/v1/webhooks/:endpoint_id",
		chain(deps.EndpointHandler.Delete, authMid.Handle, orgMid.Handle))

	// Subscription reconciliation
	router.PUT("/api/v1/webhooks/:endpoint_id/actions",
		chain(deps.EndpointHandler.SetActions, authMid.Handle, orgMid.Handle))
	router.GET("/api/v1/webhooks/:endpoint_id/actions",
		chain(deps.EndpointHandler.ListActions, authMid.Handle, orgMid.Handle))

	// Event ingestion
	router.POST("/api/v1/events",
		chain(deps.EventHandler.Ingest, authMid.Handle, orgMid.Handle))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
