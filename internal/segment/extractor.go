package segment

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ytget/tuneid/internal/logger"
	"github.com/ytget/tuneid/internal/model"
)

// Executable and I/O constants
const (
	FFmpegCommand       = "ffmpeg"
	FFprobeCommand      = "ffprobe"
	FFprobeLogLevel     = "quiet"
	FFprobeShowEntries  = "format=duration"
	FFprobeOutputFormat = "csv=p=0"

	excerptPattern = "segment_%d.mp3"
)

// Extractor slices excerpts out of an audio file with ffmpeg.
type Extractor struct {
	workDir string
	log     *logger.Logger
}

// NewExtractor creates an extractor writing temporary excerpts into
// workDir.
func NewExtractor(workDir string, log *logger.Logger) *Extractor {
	return &Extractor{workDir: workDir, log: log}
}

// Duration probes the audio duration in seconds using ffprobe.
func Duration(ctx context.Context, audioPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, FFprobeCommand,
		"-v", FFprobeLogLevel,
		"-show_entries", FFprobeShowEntries,
		"-of", FFprobeOutputFormat,
		audioPath)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to run ffprobe: %w", err)
	}

	durationStr := strings.TrimSpace(string(output))
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q: %w", durationStr, err)
	}

	return duration, nil
}

// Extract cuts the window out of audioPath and returns the excerpt
// bytes. The temporary excerpt file is removed before returning; the
// buffer is the only copy the caller holds.
func (e *Extractor) Extract(ctx context.Context, audioPath string, w model.Window) ([]byte, error) {
	excerptPath := filepath.Join(e.workDir, fmt.Sprintf(excerptPattern, w.Index))

	args := e.BuildFFmpegArgs(audioPath, excerptPath, w)
	cmd := exec.CommandContext(ctx, FFmpegCommand, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed for segment %d: %w: %s", w.Index, err, lastLine(string(output)))
	}
	defer os.Remove(excerptPath)

	data, err := os.ReadFile(excerptPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read segment %d: %w", w.Index, err)
	}

	e.log.Debug("segment extracted", "index", w.Index, "start", w.Start, "bytes", len(data))
	return data, nil
}

// BuildFFmpegArgs builds the ffmpeg command arguments for one excerpt.
// Stream copy avoids re-encoding; the window boundaries land on the
// nearest frame, which is close enough for fingerprinting.
func (e *Extractor) BuildFFmpegArgs(inputPath, outputPath string, w model.Window) []string {
	return []string{
		"-y",
		"-i", inputPath,
		"-ss", formatSeconds(w.Start),
		"-t", formatSeconds(w.Length),
		"-c", "copy",
		outputPath,
	}
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
