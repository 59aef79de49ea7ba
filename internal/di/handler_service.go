package di

import (
	"net/http"

	"github.com/samber/do/v2"

	"github.com/omarluq/cc-gate/internal/server"
)

// HandlerService wraps the HTTP handler.
type HandlerService struct {
	Handler http.Handler
}

// NewAuthorizeHandler creates the HTTP handler with all middleware.
func NewAuthorizeHandler(i do.Injector) (*HandlerService, error) {
	engineSvc := do.MustInvoke[*EngineService](i)
	concurrencySvc := do.MustInvoke[*ConcurrencyService](i)

	handler := server.SetupRoutes(engineSvc.Engine, concurrencySvc.Limiter)

	return &HandlerService{Handler: handler}, nil
}
