package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fpang/gemini-video-analyzer/internal/chat"
	"github.com/fpang/gemini-video-analyzer/internal/filehandler"
	"github.com/fpang/gemini-video-analyzer/internal/lambdaboot"
	"github.com/fpang/gemini-video-analyzer/internal/logging"
	"github.com/fpang/gemini-video-analyzer/internal/server"
)

const shutdownTimeout = 10 * time.Second

var (
	servePortFlag      string
	serveTransportFlag string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analyzer over HTTP or MCP stdio",
	Long: `Serve the analyzer.

--transport http (default) starts the edge router: GET /sse keep-alive stream,
POST /rpc MCP endpoint exposing analyzeRemoteVideo, and GET /health.
--transport stdio speaks MCP over stdin/stdout and exposes both
analyzeRemoteVideo and analyzeLocalVideo.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePortFlag, "port", "", "Port to listen on (default: PORT or 8080)")
	serveCmd.Flags().StringVar(&serveTransportFlag, "transport", "http", "Transport: http or stdio")
}

func runServe(cmd *cobra.Command, args []string) error {
	switch serveTransportFlag {
	case "http":
		return serveHTTP(cmd.Context())
	case "stdio":
		return serveStdio(cmd.Context())
	default:
		return fmt.Errorf("unknown transport %q: must be http or stdio", serveTransportFlag)
	}
}

func serveStdio(ctx context.Context) error {
	var opts []chat.Option
	// s3:// paths are only readable when AWS credentials are available.
	if clients, err := lambdaboot.InitAWS(ctx); err == nil {
		opts = append(opts, chat.WithOpener(filehandler.NewSourceOpener(clients.S3)))
	} else {
		log.Debug().Err(err).Msg("AWS config unavailable; s3:// sources disabled")
	}
	vc := newVideoClient(ctx, opts...)

	mcpServer := server.NewMCPServer(vc, commitHash, true)
	log.Info().Str("transport", "stdio").Msg("Starting MCP server")
	if err := mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

func serveHTTP(ctx context.Context) error {
	initStart := time.Now()

	if cfg.SSMAPIKeyParam != "" || cfg.SSMSharedSecretParam != "" {
		clients, err := lambdaboot.InitAWS(ctx)
		if err != nil {
			return fmt.Errorf("load AWS config: %w", err)
		}
		lambdaboot.LoadSecrets(ctx, cfg, clients)
	}

	vc := newVideoClient(ctx)
	handler := server.New(vc, server.Options{
		SharedSecret:    cfg.SharedSecret,
		AllowedOrigins:  cfg.AllowedOrigins,
		PingInterval:    cfg.PingInterval,
		MaxRequestBytes: cfg.MaxRequestBytes,
		Version:         commitHash,
	})

	port := cfg.Port
	if servePortFlag != "" {
		port = servePortFlag
	}
	if _, err := strconv.Atoi(port); err != nil {
		return fmt.Errorf("invalid port %q", port)
	}

	// No WriteTimeout: /sse responses stay open until the client leaves.
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logging.NewStartupLogger("gemini-video-serve").
		CommitHash(commitHash).
		BuildTime(buildTime).
		SSMParam("apiKey", cfg.SSMAPIKeyParam).
		SSMParam("sharedSecret", cfg.SSMSharedSecretParam).
		Config("model", cfg.Model).
		Config("port", port).
		Config("pingInterval", cfg.PingInterval.String()).
		Config("maxRequestBytes", strconv.FormatInt(cfg.MaxRequestBytes, 10)).
		Feature("corsAllowlist", len(cfg.AllowedOrigins) > 0).
		Feature("retryCeiling", cfg.Retry.MaxElapsed > 0).
		InitDuration(time.Since(initStart)).
		Log()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
