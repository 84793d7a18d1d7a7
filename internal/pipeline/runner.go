package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/tuneid/internal/config"
	"github.com/ytget/tuneid/internal/errs"
	"github.com/ytget/tuneid/internal/logger"
	"github.com/ytget/tuneid/internal/model"
	"github.com/ytget/tuneid/internal/platform"
	"github.com/ytget/tuneid/internal/report"
	"github.com/ytget/tuneid/internal/segment"
)

const runDirPrefix = "tuneid-"

// Fetcher downloads the audio of a video URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*model.AudioAsset, error)
}

// Separator produces the instrumental stem of an audio file.
type Separator interface {
	Separate(ctx context.Context, audioPath string) (string, error)
	SeparatedRoot() string
}

// Extractor cuts a planned window out of an audio file.
type Extractor interface {
	Extract(ctx context.Context, audioPath string, w model.Window) ([]byte, error)
}

// Identifier submits one audio sample for recognition.
type Identifier interface {
	Identify(ctx context.Context, sample []byte, segmentIndex int) (*model.Match, error)
}

// Probe returns the duration of an audio file in seconds.
type Probe func(ctx context.Context, audioPath string) (float64, error)

// Runner executes one pipeline run. Services are injected so stages can
// be faked in tests.
type Runner struct {
	cfg       *config.Config
	log       *logger.Logger
	fetcher   Fetcher
	separator Separator
	planner   *segment.Planner
	extractor Extractor
	probe     Probe
	ident     Identifier

	// Stage status, for logging and tests.
	Stages map[string]model.StageStatus
}

// Stage names.
const (
	StageFetch    = "fetch"
	StageSeparate = "separate"
	StageSegment  = "segment"
	StageIdentify = "identify"
	StageReport   = "report"
)

// NewRunner wires a runner from its stage services.
func NewRunner(cfg *config.Config, log *logger.Logger, f Fetcher, s Separator, p *segment.Planner, e Extractor, probe Probe, id Identifier) *Runner {
	return &Runner{
		cfg:       cfg,
		log:       log,
		fetcher:   f,
		separator: s,
		planner:   p,
		extractor: e,
		probe:     probe,
		ident:     id,
		Stages: map[string]model.StageStatus{
			StageFetch:    model.StagePending,
			StageSeparate: model.StagePending,
			StageSegment:  model.StagePending,
			StageIdentify: model.StagePending,
			StageReport:   model.StagePending,
		},
	}
}

// Workspace creates a fresh uuid-named run directory under the
// configured workdir (or the system temp directory). A fresh directory
// per run means stale artifacts from earlier runs cannot leak in.
func Workspace(base string) (string, error) {
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, runDirPrefix+uuid.NewString())
	if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// Run executes the full pipeline for url and returns the summary.
// NoMatch segments never abort the run; authentication failures halt it
// before any further uploads.
func (r *Runner) Run(ctx context.Context, url string) (*model.Summary, error) {
	started := time.Now()

	// Fetch.
	r.setStage(StageFetch, model.StageRunning)
	asset, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		r.setStage(StageFetch, model.StageError)
		return nil, err
	}
	r.setStage(StageFetch, model.StageCompleted)

	// Separate (optional).
	if r.cfg.RemoveVocals {
		r.setStage(StageSeparate, model.StageRunning)
		instrumental, err := r.separator.Separate(ctx, asset.Path)
		if err != nil {
			r.setStage(StageSeparate, model.StageError)
			return nil, err
		}
		asset.Path = instrumental
		r.setStage(StageSeparate, model.StageCompleted)
	} else {
		r.setStage(StageSeparate, model.StageSkipped)
	}

	// Plan segments.
	r.setStage(StageSegment, model.StageRunning)
	duration, err := r.probe(ctx, asset.Path)
	if err != nil {
		r.setStage(StageSegment, model.StageError)
		return nil, errs.Retrieval("could not determine audio duration").WithCause(err)
	}
	asset.Duration = duration

	plan, err := r.planner.Plan(time.Duration(duration * float64(time.Second)))
	if err != nil {
		// Too short to segment: report no match instead of failing.
		r.setStage(StageSegment, model.StageCompleted)
		r.setStage(StageIdentify, model.StageSkipped)
		summary := report.Summarize(nil, 0)
		r.setStage(StageReport, model.StageCompleted)
		r.log.Warn("audio too short to segment", "duration", duration)
		return &summary, nil
	}
	r.setStage(StageSegment, model.StageCompleted)
	r.log.Info("segment plan ready", "windows", plan.Count(), "duration", duration)

	// Identify, one segment at a time in order.
	r.setStage(StageIdentify, model.StageRunning)
	var matches []model.Match
	for _, w := range plan.Windows {
		sample, err := r.extractor.Extract(ctx, asset.Path, w)
		if err != nil {
			r.log.Warn("failed to extract segment", "index", w.Index, "error", err)
			continue
		}

		match, err := r.ident.Identify(ctx, sample, w.Index)
		if err != nil {
			if errs.Is(err, errs.ErrNoMatch) {
				r.log.Info("no match for segment", "index", w.Index)
				continue
			}
			// Auth and exhausted rate-limit retries are fatal: stop
			// before uploading anything else.
			r.setStage(StageIdentify, model.StageError)
			return nil, err
		}

		r.log.Info("segment matched", "index", w.Index, "track", match.Track.GetDisplayTitle(), "score", match.Track.Score)
		matches = append(matches, *match)
	}
	r.setStage(StageIdentify, model.StageCompleted)

	// Report.
	r.setStage(StageReport, model.StageRunning)
	summary := report.Summarize(matches, plan.Count())
	r.setStage(StageReport, model.StageCompleted)

	r.log.Info("pipeline finished",
		"tracks", len(summary.Tracks),
		"segments", summary.Segments,
		"elapsed", time.Since(started).Round(time.Millisecond),
	)
	return &summary, nil
}

// Cleanup removes the run workspace and the separation output tree.
// Best-effort: failures are logged, never returned.
func (r *Runner) Cleanup(workDir string) {
	if r.cfg.KeepFiles {
		r.log.Info("keeping temporary files", "dir", workDir)
		return
	}
	if err := platform.RemoveTree(r.separator.SeparatedRoot()); err != nil {
		r.log.Warn("failed to remove separated audio", "error", err)
	}
	if err := platform.RemoveTree(workDir); err != nil {
		r.log.Warn("failed to remove workspace", "dir", workDir, "error", err)
	}
}

func (r *Runner) setStage(name string, status model.StageStatus) {
	r.Stages[name] = status
	r.log.Debug("stage", "name", name, "status", status)
}
