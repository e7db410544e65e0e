// Package main serves the video analyzer edge router from AWS Lambda behind
// API Gateway (HTTP API, payload v2).
//
// Endpoints:
//
//	GET  /health  health check (no auth)
//	POST /rpc     MCP JSON-RPC, analyzeRemoteVideo (bearer auth)
//	GET  /sse     keep-alive stream (bearer auth); API Gateway buffers
//	              responses, so long-lived streams belong on `gemini-video serve`
//
// Secrets missing from the environment are read from SSM Parameter Store via
// SSM_API_KEY_PARAM and SSM_SHARED_SECRET_PARAM.
package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"

	"github.com/fpang/gemini-video-analyzer/internal/chat"
	"github.com/fpang/gemini-video-analyzer/internal/config"
	"github.com/fpang/gemini-video-analyzer/internal/lambdaboot"
	"github.com/fpang/gemini-video-analyzer/internal/logging"
	"github.com/fpang/gemini-video-analyzer/internal/server"
)

// Set via -ldflags at build time.
var (
	commitHash = "dev"
	buildTime  = "unknown"
)

var handler http.Handler

func init() {
	initStart := time.Now()
	logging.Init()
	ctx := context.Background()

	cfg := config.FromEnv()
	clients := lambdaboot.MustInitAWS(ctx)
	lambdaboot.LoadSecrets(ctx, cfg, clients)
	if cfg.APIKey == "" {
		log.Fatal().Msg("GOOGLE_API_KEY is not set and SSM_API_KEY_PARAM did not provide one")
	}

	client, err := chat.NewGeminiClient(ctx, cfg.APIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}
	vc := chat.NewGenaiVideoClient(client, cfg.ClientOptions()...)

	handler = server.New(vc, server.Options{
		SharedSecret:    cfg.SharedSecret,
		AllowedOrigins:  cfg.AllowedOrigins,
		PingInterval:    cfg.PingInterval,
		MaxRequestBytes: cfg.MaxRequestBytes,
		Version:         commitHash,
	})

	lambdaboot.StartupLog("video-lambda", initStart).
		CommitHash(commitHash).
		BuildTime(buildTime).
		SSMParam("apiKey", cfg.SSMAPIKeyParam).
		SSMParam("sharedSecret", cfg.SSMSharedSecretParam).
		Config("model", cfg.Model).
		Config("maxRequestBytes", strconv.FormatInt(cfg.MaxRequestBytes, 10)).
		Config("fallbackModels", strconv.Itoa(len(cfg.Retry.FallbackModels))).
		Feature("corsAllowlist", len(cfg.AllowedOrigins) > 0).
		Feature("retryCeiling", cfg.Retry.MaxElapsed > 0).
		Log()
}

func main() {
	adapter := httpadapter.NewV2(handler)
	lambda.Start(adapter.ProxyWithContext)
}
