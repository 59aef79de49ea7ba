package di

import (
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/samber/do/v2"

	"github.com/omarluq/cc-gate/internal/salt"
)

// SaltService wraps the salt provider and the salted key hasher.
type SaltService struct {
	Provider salt.Provider
	Hasher   *salt.Hasher
}

// NewSalt creates the salt provider based on configuration. A static salt
// wins over a secret reference; with neither configured the salt is empty
// and every key lookup misses.
func NewSalt(i do.Injector) (*SaltService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	loggerSvc := do.MustInvoke[*LoggerService](i)

	var provider salt.Provider
	switch {
	case cfgSvc.Config.Salt.Static != "":
		provider = salt.StaticProvider(cfgSvc.Config.Salt.Static)
	case cfgSvc.Config.Salt.SecretID != "":
		awsSvc := do.MustInvoke[*AWSService](i)
		client := secretsmanager.NewFromConfig(awsSvc.Config)
		provider = salt.NewSecretsProvider(client, cfgSvc.Config.Salt.SecretID, *loggerSvc.Logger)
	default:
		provider = salt.StaticProvider("")
	}

	return &SaltService{
		Provider: provider,
		Hasher:   salt.NewHasher(provider),
	}, nil
}
