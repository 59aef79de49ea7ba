package authz

import "strings"

// Kind tags the credential type carried by a request.
type Kind string

const (
	// KindBearer marks an opaque signed token (OIDC access/id token).
	KindBearer Kind = "bearer"
	// KindAPIKey marks a raw long-lived API key.
	KindAPIKey Kind = "api_key"
)

// Credential is the single credential extracted from a request. There is no
// multi-credential composition: one Authorization value, one credential.
type Credential struct {
	Kind Kind
	Raw  string
}

// ExtractCredential pulls the bearer value out of an event's Authorization
// header (or WebSocket token field). The value must be exactly two
// space-separated tokens with the first equal to "Bearer".
//
// The credential is initially tagged KindBearer; the engine re-tags it
// KindAPIKey when the fallback path is taken.
func ExtractCredential(event *Event) (Credential, error) {
	value, err := event.authorizationValue()
	if err != nil {
		return Credential{}, err
	}

	parts := strings.Split(value, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return Credential{}, ErrMalformedHeader
	}

	return Credential{Kind: KindBearer, Raw: parts[1]}, nil
}

// looksLikeJWT reports whether the raw credential has the three
// dot-separated segments of a compact JWS. Credentials that cannot possibly
// be tokens (long-lived API keys) skip token verification entirely.
func looksLikeJWT(raw string) bool {
	return strings.Count(raw, ".") == 2
}
