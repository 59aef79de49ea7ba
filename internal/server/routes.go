package server

import "net/http"

// SetupRoutes creates the HTTP handler with all routes configured.
// Routes:
//   - POST /v1/authorize - Decide an authorization event
//   - GET /healthz - Health check endpoint (no auth required)
func SetupRoutes(engine Authorizer, limiter *ConcurrencyLimiter) http.Handler {
	mux := http.NewServeMux()

	// Apply middleware in order:
	// 1. RequestIDMiddleware (first - generates ID)
	// 2. LoggingMiddleware (second - logs with ID)
	// 3. ConcurrencyMiddleware (third - rejections include ID)
	// 4. Handler
	var authorizeHandler http.Handler = NewAuthorizeHandler(engine)
	authorizeHandler = ConcurrencyMiddleware(limiter)(authorizeHandler)
	authorizeHandler = LoggingMiddleware()(authorizeHandler)
	authorizeHandler = RequestIDMiddleware()(authorizeHandler)

	mux.Handle("POST /v1/authorize", authorizeHandler)

	// Health check endpoint (no auth required)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck // Health check write error is non-critical
		w.Write([]byte(`{"status":"ok"}`))
	})

	return mux
}
