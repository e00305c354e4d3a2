package routes

import (
	"net/http"

	"github.com/compozy/pyqs-uploader/internal/handler"
	"github.com/justinas/alice"
	"go.uber.org/zap"
)

// SetupRoutes wires the upload form, its submission endpoint and the health check.
func SetupRoutes(srv *handler.Server, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()

	// Upload form and submission
	mux.Handle("/{$}", http.HandlerFunc(srv.Upload))

	// Health check
	mux.HandleFunc("GET /healthz", srv.Healthz)

	chain := alice.New(requestID, logRequest(logger), recoverPanic(logger))
	return chain.Then(mux)
}
