// Package lambdaboot provides shared cold-start bootstrap logic for the
// Lambda binary and the AWS-backed CLI paths.
package lambdaboot

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/fpang/gemini-video-analyzer/internal/config"
	"github.com/fpang/gemini-video-analyzer/internal/logging"
)

// AWSClients holds the AWS SDK clients used by the analyzer.
type AWSClients struct {
	Config aws.Config
	SSM    *ssm.Client
	S3     *s3.Client
}

// InitAWS loads the default AWS config and creates the SSM and S3 clients.
func InitAWS(ctx context.Context) (AWSClients, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return AWSClients{}, err
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return AWSClients{
		Config: cfg,
		SSM:    ssm.NewFromConfig(cfg),
		S3:     s3.NewFromConfig(cfg),
	}, nil
}

// MustInitAWS is InitAWS for init(); it exits on failure.
func MustInitAWS(ctx context.Context) AWSClients {
	clients, err := InitAWS(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	return clients
}

// LoadSecrets resolves any secrets cfg is missing from SSM Parameter Store.
// Nothing is fetched when no SSM parameter is configured. Exits on failure.
func LoadSecrets(ctx context.Context, cfg *config.Config, clients AWSClients) {
	if cfg.SSMAPIKeyParam == "" && cfg.SSMSharedSecretParam == "" {
		return
	}
	start := time.Now()
	if err := cfg.ResolveSecrets(ctx, clients.SSM); err != nil {
		log.Fatal().Err(err).Msg("Failed to read secrets from SSM")
	}
	log.Debug().Dur("elapsed", time.Since(start)).Msg("Secrets resolved")
}

// StartupLog is a convenience wrapper for the startup logger.
func StartupLog(name string, initStart time.Time) *logging.StartupLogger {
	return logging.NewStartupLogger(name).InitDuration(time.Since(initStart))
}
