package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/gemini-video-analyzer/internal/chat"
	"github.com/fpang/gemini-video-analyzer/internal/cli"
	"github.com/fpang/gemini-video-analyzer/internal/filehandler"
	"github.com/fpang/gemini-video-analyzer/internal/lambdaboot"
	"github.com/fpang/gemini-video-analyzer/internal/s3util"
)

var (
	localPromptFlag   string
	localMIMETypeFlag string
	localPickFlag     bool
)

var localCmd = &cobra.Command{
	Use:   "local [path | s3://bucket/key]",
	Short: "Upload and analyze a local video",
	Long: `Upload a video to the Gemini Files API, wait until it is processed,
analyze it, and delete the upload.

Without a path, --pick opens a native file dialog; otherwise the path is read
from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLocal,
}

func init() {
	localCmd.Flags().StringVarP(&localPromptFlag, "prompt", "p", "", "Prompt to send with the video (default: structured summary)")
	localCmd.Flags().StringVar(&localMIMETypeFlag, "mime-type", "", "Video MIME type (default: guessed from the extension)")
	localCmd.Flags().BoolVar(&localPickFlag, "pick", false, "Choose the video with a native file dialog")
}

func runLocal(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	path, err := localVideoPath(cmd, args)
	if err != nil {
		return err
	}
	path, err = cli.ResolveVideoPath(path)
	if err != nil {
		return err
	}

	var opts []chat.Option
	if s3util.IsS3URI(path) {
		clients, err := lambdaboot.InitAWS(ctx)
		if err != nil {
			return fmt.Errorf("load AWS config for %s: %w", path, err)
		}
		opts = append(opts, chat.WithOpener(filehandler.NewSourceOpener(clients.S3)))
	}
	vc := newVideoClient(ctx, opts...)

	log.Info().
		Str("path", path).
		Str("mimeType", filehandler.VideoMIMETypeOrDefault(path)).
		Msg("Analyzing local video")

	start := time.Now()
	text, err := vc.AnalyzeLocalVideo(ctx, chat.LocalRequest{
		FilePath: path,
		Prompt:   localPromptFlag,
		Model:    cfg.Model,
		MIMEType: localMIMETypeFlag,
	})
	if err != nil {
		return err
	}

	log.Info().Str("elapsed", cli.FormatDurationShort(time.Since(start))).Msg("Analysis complete")
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

// localVideoPath takes the path from args, the file dialog, or stdin, in that
// order.
func localVideoPath(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if localPickFlag {
		picked, err := cli.PickVideoFile()
		if err != nil {
			log.Warn().Err(err).Msg("File picker unavailable, falling back to prompt")
		} else if picked != "" {
			return picked, nil
		}
	}
	path, err := cli.PromptForVideoPath(os.Stdin, cmd.ErrOrStderr())
	if errors.Is(err, cli.ErrNoPath) {
		return "", errors.New("a video path is required")
	}
	return path, err
}
