package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoPath is returned when the user supplies no video path.
var ErrNoPath = errors.New("no video path given")

// PromptForVideoPath asks for a video path on out and reads one line from in.
func PromptForVideoPath(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Video file path: ")

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read video path: %w", err)
	}

	input = strings.Trim(strings.TrimSpace(input), `"'`)
	if input == "" {
		return "", ErrNoPath
	}
	return input, nil
}
