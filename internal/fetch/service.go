package fetch

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/tuneid/internal/errs"
	"github.com/ytget/tuneid/internal/logger"
	"github.com/ytget/tuneid/internal/model"
	"github.com/ytget/tuneid/internal/platform"
)

const (
	// Output template; yt-dlp substitutes the final extension.
	outputTemplate = "source.%(ext)s"

	// Audio extraction settings passed to yt-dlp.
	audioFormat  = "mp3"
	audioQuality = "0" // best

	maxRetries       = 1
	retryBackoff     = 2 * time.Second
	progressInterval = 500 * time.Millisecond
)

// Service downloads the audio stream of a video URL into a working
// directory.
type Service struct {
	workDir string
	log     *logger.Logger
}

// NewService creates a new fetch service writing into workDir.
func NewService(workDir string, log *logger.Logger) *Service {
	return &Service{workDir: workDir, log: log}
}

// Fetch downloads the audio for url and returns the resulting asset.
// The external downloader does the heavy lifting; this call blocks until
// it finishes or ctx is cancelled.
func (s *Service) Fetch(ctx context.Context, url string) (*model.AudioAsset, error) {
	if url == "" {
		return nil, errs.Retrieval("no source URL provided")
	}
	if err := platform.CreateDirectoryIfNotExists(s.workDir); err != nil {
		return nil, errs.Retrieval("failed to prepare working directory").WithCause(err)
	}

	s.log.Info("downloading audio", "url", url)

	dl := ytdlp.New().
		ExtractAudio().
		AudioFormat(audioFormat).
		AudioQuality(audioQuality).
		NoPlaylist().
		ForceOverwrites().
		RestrictFilenames().
		Output(filepath.Join(s.workDir, outputTemplate))

	var lastPercent int
	dl.ProgressFunc(progressInterval, func(update ytdlp.ProgressUpdate) {
		if update.TotalBytes == 0 {
			return
		}
		percent := int(float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100)
		if percent >= lastPercent+25 {
			lastPercent = percent
			s.log.Debug("download progress", "percent", percent)
		}
	})

	result, err := s.downloadWithRetry(ctx, dl, url)
	if err != nil {
		return nil, errs.Retrievalf("download failed for %s", url).WithCause(err)
	}

	asset := &model.AudioAsset{FetchedAt: time.Now()}
	if info, err := result.GetExtractedInfo(); err == nil && len(info) > 0 {
		if info[0].Filename != nil {
			asset.Path = *info[0].Filename
		}
		if info[0].Title != nil {
			asset.Title = *info[0].Title
		}
	}

	// The extraction info does not always carry the post-processed
	// filename, so fall back to scanning the working directory.
	if asset.Path == "" || !fileExists(asset.Path) {
		found, err := platform.FindNewestAudio(s.workDir)
		if err != nil {
			return nil, errs.Retrieval("downloader reported success but produced no audio file").WithCause(err)
		}
		asset.Path = found
	}

	if stat, err := os.Stat(asset.Path); err == nil {
		asset.SizeBytes = stat.Size()
	}

	s.log.Info("audio downloaded", "path", asset.Path, "bytes", asset.SizeBytes)
	return asset, nil
}

// downloadWithRetry attempts download with retry logic
func (s *Service) downloadWithRetry(ctx context.Context, dl *ytdlp.Command, url string) (*ytdlp.Result, error) {
	var lastErr error
	var result *ytdlp.Result

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryBackoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			s.log.Warn("retrying download", "attempt", attempt+1, "url", url)
		}

		res, err := dl.Run(ctx, url)
		if err == nil {
			return res, nil
		}

		lastErr = err
		result = res // keep last result even if there was an error
		s.log.Debug("download attempt failed", "attempt", attempt+1, "error", err)

		if ctx.Err() != nil {
			return result, ctx.Err()
		}
	}

	return result, lastErr
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
