package cli

import (
	"errors"
	"sort"

	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"

	"github.com/fpang/gemini-video-analyzer/internal/filehandler"
)

// PickVideoFile opens the native file dialog filtered to supported video
// extensions. A canceled dialog returns "" and no error.
func PickVideoFile() (string, error) {
	selected, err := zenity.SelectFile(
		zenity.Title("Select a video to analyze"),
		zenity.FileFilters{
			{Name: "Video files", Patterns: videoPatterns()},
		},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			log.Debug().Msg("File picker canceled")
			return "", nil
		}
		return "", err
	}
	log.Info().Str("path", selected).Msg("Video picked via native dialog")
	return selected, nil
}

func videoPatterns() []string {
	patterns := make([]string, 0, len(filehandler.SupportedVideoExtensions))
	for ext := range filehandler.SupportedVideoExtensions {
		patterns = append(patterns, "*."+ext)
	}
	sort.Strings(patterns)
	return patterns
}
