// Package main is the gemini-video CLI: analyze a video by URL or from a
// local file with Gemini, or serve the analyzer over HTTP or MCP stdio.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/gemini-video-analyzer/internal/chat"
	"github.com/fpang/gemini-video-analyzer/internal/cli"
	"github.com/fpang/gemini-video-analyzer/internal/config"
	"github.com/fpang/gemini-video-analyzer/internal/logging"
	"github.com/fpang/gemini-video-analyzer/internal/metrics"
)

// Set via -ldflags at build time.
var (
	commitHash = "dev"
	buildTime  = "unknown"
)

// Global flags
var (
	modelFlag    string
	logLevelFlag string
)

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "gemini-video",
	Short: "Analyze videos with Gemini",
	Long: `gemini-video asks a Gemini model about a video.

Remote videos (YouTube links, direct MP4 URLs) are passed to Gemini by URL.
Local videos are uploaded, analyzed once processing completes, and deleted.

Examples:
  gemini-video remote https://www.youtube.com/watch?v=dQw4w9WgXcQ
  gemini-video remote https://example.com/clip.mp4 --prompt "List every speaker"
  gemini-video local ./talk.mov --model gemini-2.5-pro
  gemini-video local s3://my-bucket/videos/talk.mp4
  gemini-video local --pick
  gemini-video serve --port 8080
  gemini-video serve --transport stdio`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init()
		if logLevelFlag != "" {
			zerolog.SetGlobalLevel(logging.ParseLevel(logLevelFlag))
		}
		// EMF lines are only useful where CloudWatch collects stdout.
		metrics.SetOutput(io.Discard)

		cfg = config.Load()
		if modelFlag != "" {
			cfg.Model = modelFlag
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Gemini model to use (default: GEMINI_MODEL or "+chat.DefaultModelName+")")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error (default: GEMINI_LOG_LEVEL or info)")

	rootCmd.AddCommand(remoteCmd, localCmd, serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("Command failed")
		stop()
		os.Exit(1)
	}
}

// newVideoClient creates the Gemini-backed analyzer from cfg, validating the
// API key first.
func newVideoClient(ctx context.Context, extra ...chat.Option) *chat.VideoClient {
	client := cli.InitGeminiClient(ctx, cfg.APIKey, cfg.Model)
	return chat.NewGenaiVideoClient(client, append(cfg.ClientOptions(), extra...)...)
}
