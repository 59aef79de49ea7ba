package authz

import "strings"

// Event is the normalized inbound authorization request. The gateway layer
// produces two shapes: REST events carry a header map, WebSocket events carry
// a single authorizationToken field. Both are normalized here into one
// credential-extraction path instead of duck-typing at the call site.
type Event struct {
	// MethodARN identifies the method/resource being invoked.
	MethodARN string `json:"methodArn"`

	// Headers is the REST-shape header map. Lookup of the Authorization
	// header is case-insensitive.
	Headers map[string]string `json:"headers,omitempty"`

	// AuthorizationToken is the WebSocket-shape credential field, carrying
	// the same "Bearer <value>" content as the Authorization header.
	AuthorizationToken string `json:"authorizationToken,omitempty"`
}

// authorizationValue returns the raw Authorization value from either event
// shape. Returns ErrMissingHeader when neither shape carries a credential.
func (e *Event) authorizationValue() (string, error) {
	if len(e.Headers) == 0 {
		if e.AuthorizationToken == "" {
			return "", ErrMissingHeader
		}
		return e.AuthorizationToken, nil
	}

	for name, value := range e.Headers {
		if strings.EqualFold(name, "Authorization") {
			return value, nil
		}
	}

	return "", ErrMissingHeader
}
