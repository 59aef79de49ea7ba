package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/samber/do/v2"
)

// AWSService wraps the shared AWS client configuration. Built lazily: a
// deployment with a static salt and no key table never touches AWS.
type AWSService struct {
	Config aws.Config
}

// NewAWS loads the default AWS configuration for the identity region.
func NewAWS(i do.Injector) (*AWSService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfgSvc.Config.Identity.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSService{Config: awsCfg}, nil
}
