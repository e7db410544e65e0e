package config

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

// ParameterGetter is the subset of *ssm.Client used to resolve secrets.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// ResolveSecrets fills APIKey and SharedSecret from SSM Parameter Store when
// they are missing from the environment and the matching SSM_*_PARAM is set.
func (c *Config) ResolveSecrets(ctx context.Context, client ParameterGetter) error {
	if c.APIKey == "" && c.SSMAPIKeyParam != "" {
		v, err := getSecureParameter(ctx, client, c.SSMAPIKeyParam)
		if err != nil {
			return err
		}
		c.APIKey = v
	}
	if c.SharedSecret == "" && c.SSMSharedSecretParam != "" {
		v, err := getSecureParameter(ctx, client, c.SSMSharedSecretParam)
		if err != nil {
			return err
		}
		c.SharedSecret = v
	}
	return nil
}

func getSecureParameter(ctx context.Context, client ParameterGetter, name string) (string, error) {
	start := time.Now()
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("read SSM parameter %s: %w", name, err)
	}
	if out.Parameter == nil || aws.ToString(out.Parameter.Value) == "" {
		return "", fmt.Errorf("SSM parameter %s is empty", name)
	}
	log.Debug().Str("param", name).Dur("elapsed", time.Since(start)).Msg("Secret loaded from SSM")
	return aws.ToString(out.Parameter.Value), nil
}
