package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestServerConfigGetListen(t *testing.T) {
	t.Parallel()

	s := &ServerConfig{}
	if got := s.GetListen(); got != ":8089" {
		t.Errorf("Expected default listen :8089, got %s", got)
	}

	s.Listen = "127.0.0.1:9000"
	if got := s.GetListen(); got != "127.0.0.1:9000" {
		t.Errorf("Expected configured listen, got %s", got)
	}
}

func TestServerConfigGetTimeoutOption(t *testing.T) {
	t.Parallel()

	s := &ServerConfig{}
	if s.GetTimeoutOption().IsPresent() {
		t.Error("Expected None for zero timeout")
	}

	s.TimeoutMS = 5000
	d, ok := s.GetTimeoutOption().Get()
	if !ok || d != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %v (present=%v)", d, ok)
	}
}

func TestIdentityConfigGetTokenUse(t *testing.T) {
	t.Parallel()

	c := &IdentityConfig{}
	if got := c.GetTokenUse(); got != TokenUseAccess {
		t.Errorf("Expected default token use %q, got %q", TokenUseAccess, got)
	}

	c.TokenUse = TokenUseID
	if got := c.GetTokenUse(); got != TokenUseID {
		t.Errorf("Expected configured token use, got %q", got)
	}
}

func TestKeyStoreConfigGetRegion(t *testing.T) {
	t.Parallel()

	c := &KeyStoreConfig{}
	if got := c.GetRegion("us-east-1"); got != "us-east-1" {
		t.Errorf("Expected fallback region, got %q", got)
	}

	c.Region = "eu-west-1"
	if got := c.GetRegion("us-east-1"); got != "eu-west-1" {
		t.Errorf("Expected override region, got %q", got)
	}
}

func TestPolicyConfigListParsing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single", "alice", []string{"alice"}},
		{"multiple", "alice,bob", []string{"alice", "bob"}},
		{"whitespace trimmed", " alice , bob ", []string{"alice", "bob"}},
		{"empty entries dropped", "alice,,bob,", []string{"alice", "bob"}},
		{"only separators", ", ,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &PolicyConfig{
				AdminList:               tt.input,
				NonAdminEndpoints:       tt.input,
				APIKeyExcludedEndpoints: tt.input,
			}

			for label, got := range map[string][]string{
				"GetAdminList":               p.GetAdminList(),
				"GetNonAdminEndpoints":       p.GetNonAdminEndpoints(),
				"GetAPIKeyExcludedEndpoints": p.GetAPIKeyExcludedEndpoints(),
			} {
				if len(got) != len(tt.want) {
					t.Errorf("%s(%q) = %v, want %v", label, tt.input, got, tt.want)
					continue
				}
				for i := range got {
					if got[i] != tt.want[i] {
						t.Errorf("%s(%q)[%d] = %q, want %q", label, tt.input, i, got[i], tt.want[i])
					}
				}
			}
		})
	}
}

func TestCacheConfigGetDecisionTTL(t *testing.T) {
	t.Parallel()

	c := &CacheConfig{}
	if c.GetDecisionTTL().IsPresent() {
		t.Error("Expected None for zero TTL")
	}

	c.DecisionTTLSeconds = 120
	d, ok := c.GetDecisionTTL().Get()
	if !ok || d != 2*time.Minute {
		t.Errorf("Expected 2m TTL, got %v (present=%v)", d, ok)
	}
}

func TestLoggingConfigParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		l := &LoggingConfig{Level: tt.level}
		if got := l.ParseLevel(); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
