package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/gemini-video-analyzer/internal/assets"
	"github.com/fpang/gemini-video-analyzer/internal/chat"
	"github.com/fpang/gemini-video-analyzer/internal/cli"
)

var remotePromptFlag string

var remoteCmd = &cobra.Command{
	Use:   "remote <video-url>",
	Short: "Analyze a video by URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemote,
}

func init() {
	remoteCmd.Flags().StringVarP(&remotePromptFlag, "prompt", "p", "", "Prompt to send with the video (default: structured summary)")
}

func runRemote(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	vc := newVideoClient(ctx)

	start := time.Now()
	text, err := vc.AnalyzeRemoteVideo(ctx, chat.RemoteRequest{
		VideoURL: args[0],
		Prompt:   remotePromptFlag,
		Model:    cfg.Model,
	})
	if err != nil {
		if chat.IsPermissionError(err) {
			fmt.Fprintln(cmd.ErrOrStderr(), assets.RenderPermissionGuidance(err.Error()))
		}
		return err
	}

	log.Info().Str("elapsed", cli.FormatDurationShort(time.Since(start))).Msg("Analysis complete")
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
