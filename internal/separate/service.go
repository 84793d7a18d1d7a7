package separate

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ytget/tuneid/internal/errs"
	"github.com/ytget/tuneid/internal/logger"
)

// Demucs invocation settings. The model name is fixed because it
// determines the output directory layout.
const (
	ModelName = "htdemucs"

	separatedDirName  = "separated"
	instrumentalStem  = "no_vocals.mp3"
	vocalsStem        = "vocals.mp3"
	pythonCommand     = "python3"
	demucsCommand     = "demucs"
	demucsModuleEntry = "demucs.separate"
	twoStemsFlag      = "--two-stems"
	twoStemsTarget    = "vocals"
	modelFlag         = "-n"
	mp3Flag           = "--mp3"
	outputDirFlag     = "-o"
)

// Strategy is one way of invoking Demucs. The module entry point is
// preferred; the standalone binary is the fallback when the module is
// not importable in the ambient Python environment.
type Strategy struct {
	Name string
	Cmd  string
	Args []string
}

// Service splits an audio file into vocal and instrumental stems.
type Service struct {
	workDir    string
	log        *logger.Logger
	strategies []Strategy

	// runCommand is swapped in tests.
	runCommand func(ctx context.Context, cmd string, args ...string) error
}

// NewService creates a separation service whose output tree lives under
// workDir.
func NewService(workDir string, log *logger.Logger) *Service {
	s := &Service{workDir: workDir, log: log}
	s.strategies = []Strategy{
		{Name: "python module", Cmd: pythonCommand, Args: []string{"-m", demucsModuleEntry}},
		{Name: "demucs binary", Cmd: demucsCommand, Args: nil},
	}
	s.runCommand = s.execute
	return s
}

// OutputDir returns the directory Demucs writes its stems into for the
// given input file.
func (s *Service) OutputDir(audioPath string) string {
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	return filepath.Join(s.workDir, separatedDirName, ModelName, base)
}

// SeparatedRoot returns the root of the separation output tree, for
// cleanup.
func (s *Service) SeparatedRoot() string {
	return filepath.Join(s.workDir, separatedDirName)
}

// Separate runs Demucs on audioPath and returns the path of the
// instrumental (no-vocals) stem. Each strategy is tried in order; the
// last error surfaces as a SeparationError once all have failed.
func (s *Service) Separate(ctx context.Context, audioPath string) (string, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return "", errs.Separation("input audio does not exist").WithCause(err)
	}

	args := []string{
		twoStemsFlag, twoStemsTarget,
		modelFlag, ModelName,
		mp3Flag,
		outputDirFlag, filepath.Join(s.workDir, separatedDirName),
		audioPath,
	}
	expected := filepath.Join(s.OutputDir(audioPath), instrumentalStem)

	var lastErr error
	for _, strategy := range s.strategies {
		s.log.Info("separating vocals", "strategy", strategy.Name, "model", ModelName)

		if err := s.runCommand(ctx, strategy.Cmd, append(strategy.Args, args...)...); err != nil {
			lastErr = err
			s.log.Warn("separation strategy failed", "strategy", strategy.Name, "error", err)
			if ctx.Err() != nil {
				return "", errs.Separation("separation cancelled").WithCause(ctx.Err())
			}
			continue
		}

		if _, err := os.Stat(expected); err != nil {
			lastErr = err
			s.log.Warn("separation produced no output", "strategy", strategy.Name, "expected", expected)
			continue
		}

		s.log.Info("vocals removed", "instrumental", expected)
		return expected, nil
	}

	return "", errs.Separation("all separation strategies failed").WithCause(lastErr)
}

// execute runs a strategy command with stderr capture.
func (s *Service) execute(ctx context.Context, cmd string, args ...string) error {
	c := exec.CommandContext(ctx, cmd, args...)
	var stderr bytes.Buffer
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return errs.Separation(lastLine(msg)).WithCause(err)
		}
		return err
	}
	return nil
}

// lastLine trims a stderr dump to its final line, which is where Python
// tracebacks put the actual error.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
