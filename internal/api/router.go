// media-service/internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter собирает маршруты каталога и оборачивает их в middleware.
func NewRouter(handler *MediaHandler, logger *slog.Logger, corsOrigins []string) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(handler.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(handler.MethodNotAllowed)

	router.HandleFunc("/health", handler.Health).Methods(http.MethodGet)

	// Эндпоинты каталога: /api/media
	mediaRouter := router.PathPrefix("/api/media").Subrouter()
	mediaRouter.NotFoundHandler = router.NotFoundHandler
	mediaRouter.MethodNotAllowedHandler = router.MethodNotAllowedHandler
	for _, root := range []string{"", "/"} {
		mediaRouter.HandleFunc(root, handler.CreateMedia).Methods(http.MethodPost)
		mediaRouter.HandleFunc(root, handler.ListMedia).Methods(http.MethodGet)
	}
	mediaRouter.HandleFunc("/{id}", handler.GetMedia).Methods(http.MethodGet)
	mediaRouter.HandleFunc("/{id}", handler.UpdateMedia).Methods(http.MethodPut)
	mediaRouter.HandleFunc("/{id}", handler.DeleteMedia).Methods(http.MethodDelete)

	var h http.Handler = router
	h = recoverMiddleware(logger, h)
	h = loggingMiddleware(logger, h)
	h = corsMiddleware(corsOrigins)(h)
	return h
}
