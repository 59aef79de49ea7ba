package authz

// Effect is the outcome of a policy statement.
type Effect string

// Policy effects.
const (
	EffectAllow Effect = "Allow"
	EffectDeny  Effect = "Deny"
)

// policyVersion is the only policy document version the gateway evaluates.
const policyVersion = "2012-10-17"

// invokeAction is the action granted on Allow decisions.
const invokeAction = "execute-api:Invoke"

// Statement is a single policy statement.
type Statement struct {
	Action   string `json:"Action"`
	Effect   Effect `json:"Effect"`
	Resource string `json:"Resource"`
}

// PolicyDocument is the IAM-style policy wrapper around statements.
type PolicyDocument struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

// Decision is the authorizer's output: exactly one per request, never
// persisted. On Deny the principal is a wildcard placeholder and the
// statement denies all actions on all resources regardless of the requested
// resource. This is intentionally coarse: fail closed, not resource scoped.
type Decision struct {
	PrincipalID    string            `json:"principalId"`
	PolicyDocument PolicyDocument    `json:"policyDocument"`
	Context        map[string]string `json:"context,omitempty"`
}

// Allowed reports whether the decision grants access.
func (d Decision) Allowed() bool {
	for _, stmt := range d.PolicyDocument.Statement {
		if stmt.Effect == EffectAllow {
			return true
		}
	}
	return false
}

// AllowDecision builds an Allow decision for the given principal and
// resource. The context carries the resolved identity for downstream quota,
// model-access and billing components.
func AllowDecision(principal, resource, username string) Decision {
	if resource == "" {
		resource = "*"
	}

	ctx := map[string]string{"userId": principal}
	if username != "" {
		ctx["username"] = username
	}

	return Decision{
		PrincipalID: principal,
		PolicyDocument: PolicyDocument{
			Version: policyVersion,
			Statement: []Statement{
				{Action: invokeAction, Effect: EffectAllow, Resource: resource},
			},
		},
		Context: ctx,
	}
}

// DenyAllDecision builds the coarse deny-everything decision.
func DenyAllDecision() Decision {
	return Decision{
		PrincipalID: "*",
		PolicyDocument: PolicyDocument{
			Version: policyVersion,
			Statement: []Statement{
				{Action: "*", Effect: EffectDeny, Resource: "*"},
			},
		},
	}
}
