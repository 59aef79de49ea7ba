package di

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/samber/do/v2"

	"github.com/omarluq/cc-gate/internal/authz"
	"github.com/omarluq/cc-gate/internal/breaker"
	"github.com/omarluq/cc-gate/internal/keystore"
)

// KeyStoreService wraps the API key store.
type KeyStoreService struct {
	Store authz.KeyStore
}

// NewKeyStore creates the key store based on configuration. Without a
// table name the store is disabled and API-key credentials deny.
func NewKeyStore(i do.Injector) (*KeyStoreService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	cfg := cfgSvc.Config

	if cfg.KeyStore.TableName == "" {
		return &KeyStoreService{Store: keystore.Disabled{}}, nil
	}

	loggerSvc := do.MustInvoke[*LoggerService](i)
	awsSvc := do.MustInvoke[*AWSService](i)

	client := dynamodb.NewFromConfig(awsSvc.Config, func(o *dynamodb.Options) {
		o.Region = cfg.KeyStore.GetRegion(cfg.Identity.Region)
		if cfg.KeyStore.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.KeyStore.Endpoint)
		}
	})

	store := keystore.NewDynamoStore(client, cfg.KeyStore.TableName, *loggerSvc.Logger)
	circuit := breaker.New("keystore", cfg.Breaker, loggerSvc.Logger)

	return &KeyStoreService{Store: keystore.NewBreakerStore(store, circuit)}, nil
}
