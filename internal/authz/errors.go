package authz

import "errors"

// Deny reasons distinguished internally for audit logging. The external
// contract stays binary (Allow/Deny): none of these are ever surfaced to
// the caller as distinguishable error codes, to avoid leaking information
// useful for credential guessing.
var (
	// ErrMissingHeader indicates no Authorization header or token field was present.
	ErrMissingHeader = errors.New("authz: authorization header missing")

	// ErrMalformedHeader indicates the Authorization value is not "Bearer <value>".
	ErrMalformedHeader = errors.New("authz: authorization header malformed")

	// ErrVerificationFailed indicates the bearer token failed verification.
	// All sub-reasons (signature, expiry, issuer, audience, claim shape)
	// collapse into this single condition toward the engine.
	ErrVerificationFailed = errors.New("authz: token verification failed")

	// ErrStoreLookupFailed indicates the API key store could not be queried.
	ErrStoreLookupFailed = errors.New("authz: api key store lookup failed")

	// ErrKeyNotFound indicates no record matched the credential hash.
	ErrKeyNotFound = errors.New("authz: api key not found")

	// ErrKeyExpired indicates the matched key carries an expiry in the past.
	ErrKeyExpired = errors.New("authz: api key expired")

	// ErrNotAdmin indicates the resolved username is not in the admin list.
	ErrNotAdmin = errors.New("authz: caller is not an admin")

	// ErrEndpointExcluded indicates the endpoint does not accept the
	// credential type or caller role (api-key-excluded or admin-only routes).
	ErrEndpointExcluded = errors.New("authz: endpoint not permitted for caller")

	// ErrSaltUnavailable indicates the salt secret could not be fetched.
	ErrSaltUnavailable = errors.New("authz: salt unavailable")
)

// denyReason maps an internal error to a stable audit log category.
func denyReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingHeader):
		return "missing_header"
	case errors.Is(err, ErrMalformedHeader):
		return "malformed_header"
	case errors.Is(err, ErrVerificationFailed):
		return "verification_failed"
	case errors.Is(err, ErrStoreLookupFailed):
		return "store_lookup_failed"
	case errors.Is(err, ErrKeyNotFound):
		return "key_not_found"
	case errors.Is(err, ErrKeyExpired):
		return "key_expired"
	case errors.Is(err, ErrNotAdmin):
		return "not_admin"
	case errors.Is(err, ErrEndpointExcluded):
		return "endpoint_excluded"
	case errors.Is(err, ErrSaltUnavailable):
		return "salt_unavailable"
	default:
		return "internal_error"
	}
}
