package authz

import (
	"errors"
	"testing"
)

func TestExtractCredential_RESTHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		event   Event
		want    string
		wantErr error
	}{
		{
			name: "canonical header",
			event: Event{
				MethodARN: "arn:aws:execute-api:us-east-1:123:api/prod/POST/v1/messages",
				Headers:   map[string]string{"Authorization": "Bearer tok-123"},
			},
			want: "tok-123",
		},
		{
			name: "lowercase header",
			event: Event{
				Headers: map[string]string{"authorization": "Bearer tok-456"},
			},
			want: "tok-456",
		},
		{
			name: "mixed case header",
			event: Event{
				Headers: map[string]string{"aUtHoRiZaTiOn": "Bearer tok-789"},
			},
			want: "tok-789",
		},
		{
			name: "missing header",
			event: Event{
				Headers: map[string]string{"Content-Type": "application/json"},
			},
			wantErr: ErrMissingHeader,
		},
		{
			name:    "no headers and no token field",
			event:   Event{MethodARN: "arn:x"},
			wantErr: ErrMissingHeader,
		},
		{
			name: "wrong scheme",
			event: Event{
				Headers: map[string]string{"Authorization": "Basic dXNlcjpwYXNz"},
			},
			wantErr: ErrMalformedHeader,
		},
		{
			name: "lowercase bearer keyword",
			event: Event{
				Headers: map[string]string{"Authorization": "bearer tok-123"},
			},
			wantErr: ErrMalformedHeader,
		},
		{
			name: "no value after scheme",
			event: Event{
				Headers: map[string]string{"Authorization": "Bearer "},
			},
			wantErr: ErrMalformedHeader,
		},
		{
			name: "too many parts",
			event: Event{
				Headers: map[string]string{"Authorization": "Bearer tok 123"},
			},
			wantErr: ErrMalformedHeader,
		},
		{
			name: "bare token without scheme",
			event: Event{
				Headers: map[string]string{"Authorization": "tok-123"},
			},
			wantErr: ErrMalformedHeader,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cred, err := ExtractCredential(&tt.event)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ExtractCredential error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractCredential failed: %v", err)
			}
			if cred.Raw != tt.want {
				t.Errorf("Raw = %q, want %q", cred.Raw, tt.want)
			}
			if cred.Kind != KindBearer {
				t.Errorf("Kind = %q, want %q", cred.Kind, KindBearer)
			}
		})
	}
}

func TestExtractCredential_WebSocketShape(t *testing.T) {
	t.Parallel()

	event := Event{
		MethodARN:          "arn:aws:execute-api:us-east-1:123:api/prod/$connect",
		AuthorizationToken: "Bearer ws-token",
	}

	cred, err := ExtractCredential(&event)
	if err != nil {
		t.Fatalf("ExtractCredential failed: %v", err)
	}
	if cred.Raw != "ws-token" {
		t.Errorf("Raw = %q, want ws-token", cred.Raw)
	}
}

func TestExtractCredential_HeadersWinOverTokenField(t *testing.T) {
	t.Parallel()

	// When both shapes are present the header map is authoritative.
	event := Event{
		Headers:            map[string]string{"Authorization": "Bearer from-header"},
		AuthorizationToken: "Bearer from-token-field",
	}

	cred, err := ExtractCredential(&event)
	if err != nil {
		t.Fatalf("ExtractCredential failed: %v", err)
	}
	if cred.Raw != "from-header" {
		t.Errorf("Raw = %q, want from-header", cred.Raw)
	}
}

func TestLooksLikeJWT(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want bool
	}{
		{"aaa.bbb.ccc", true},
		{"eyJhbGciOiJSUzI1NiJ9.eyJzdWIiOiJ1In0.sig", true},
		{"sk-live-abcdef123456", false},
		{"a.b", false},
		{"a.b.c.d", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := looksLikeJWT(tt.raw); got != tt.want {
			t.Errorf("looksLikeJWT(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
