package dynamo

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"yunion.io/x/log"
	"yunion.io/x/pkg/errors"
)

// ClientOptions selects where the shared client connects to. Empty fields fall
// back to the SDK's default credential and region chain.
type ClientOptions struct {
	Region   string
	Endpoint string
}

var (
	sharedClient *dynamodb.Client
	sharedErr    error
	once         sync.Once
)

// SharedClient returns the process-wide DynamoDB client, building it on first
// use. Later calls ignore opts and return the same handle.
func SharedClient(ctx context.Context, opts ClientOptions) (*dynamodb.Client, error) {
	once.Do(func() {
		var loadOpts []func(*config.LoadOptions) error
		if opts.Region != "" {
			loadOpts = append(loadOpts, config.WithRegion(opts.Region))
		}
		cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			sharedErr = errors.Wrap(err, "load aws sdk config")
			return
		}
		sharedClient = dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
			if opts.Endpoint != "" {
				o.BaseEndpoint = aws.String(opts.Endpoint)
			}
		})
		log.Infof("DynamoDB client ready (region=%q endpoint=%q)", cfg.Region, opts.Endpoint)
	})
	return sharedClient, sharedErr
}
