package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/omarluq/cc-gate/internal/authz"
)

// maxEventBytes caps the authorization event body. Events carry headers and
// a method ARN; anything bigger is garbage.
const maxEventBytes = 1 << 20

// Authorizer decides authorization events. Implemented by authz.Engine.
type Authorizer interface {
	Authorize(ctx context.Context, event *authz.Event) authz.Decision
}

// AuthorizeHandler serves POST /v1/authorize. The response is always 200
// with a policy document: a request cc-gate cannot even parse gets the
// deny-all policy, never a transport error the gateway might misread as
// "retry".
type AuthorizeHandler struct {
	engine Authorizer
}

// NewAuthorizeHandler creates the handler around the given engine.
func NewAuthorizeHandler(engine Authorizer) *AuthorizeHandler {
	return &AuthorizeHandler{engine: engine}
}

// ServeHTTP implements http.Handler.
func (h *AuthorizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var event authz.Event
	body := http.MaxBytesReader(w, r.Body, maxEventBytes)
	if err := json.NewDecoder(body).Decode(&event); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("unparseable authorization event, denying")
		writeJSON(w, http.StatusOK, authz.DenyAllDecision())
		return
	}

	decision := h.engine.Authorize(ctx, &event)
	writeJSON(w, http.StatusOK, decision)
}
