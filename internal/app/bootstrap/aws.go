package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	appconfig "github.com/mentoverse/mentoverse-platform/internal/config"
)

// AWSClients groups the service clients built from one aws.Config. A client
// is nil when nothing in the config asks for it.
type AWSClients struct {
	S3       *s3.Client
	DynamoDB *dynamodb.Client
	SES      *sesv2.Client
	SQS      *sqs.Client
}

// NeedsAWS reports whether any configured feature talks to AWS.
func NeedsAWS(cfg *appconfig.Config) bool {
	if cfg == nil {
		return false
	}
	return cfg.MentorImagesBucket != "" ||
		cfg.ConfirmationsTable != "" ||
		cfg.EmailProvider == "ses" ||
		cfg.EventsTransport == "sqs"
}

// LoadAWSConfig resolves region and credentials. Static keys are used when
// both are set; AWS_ENDPOINT_OVERRIDE points every client at LocalStack.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("bootstrap: load aws config: %w", err)
	}
	if endpoint := strings.TrimSpace(cfg.AWSEndpointOverride); endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(endpoint)
	}
	return awsCfg, nil
}

// BuildAWSClients builds only the clients the config needs.
func BuildAWSClients(awsCfg aws.Config, cfg *appconfig.Config) AWSClients {
	var clients AWSClients
	if cfg.MentorImagesBucket != "" {
		clients.S3 = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			// LocalStack serves buckets by path.
			o.UsePathStyle = cfg.AWSEndpointOverride != ""
		})
	}
	if cfg.ConfirmationsTable != "" {
		clients.DynamoDB = dynamodb.NewFromConfig(awsCfg)
	}
	if cfg.EmailProvider == "ses" {
		clients.SES = sesv2.NewFromConfig(awsCfg)
	}
	if cfg.EventsTransport == "sqs" {
		clients.SQS = sqs.NewFromConfig(awsCfg)
	}
	return clients
}
