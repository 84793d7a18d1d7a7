package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ytget/tuneid/internal/acrcloud"
	"github.com/ytget/tuneid/internal/config"
	"github.com/ytget/tuneid/internal/errs"
	"github.com/ytget/tuneid/internal/fetch"
	"github.com/ytget/tuneid/internal/logger"
	"github.com/ytget/tuneid/internal/pipeline"
	"github.com/ytget/tuneid/internal/report"
	"github.com/ytget/tuneid/internal/segment"
	"github.com/ytget/tuneid/internal/separate"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "tuneid: %v\n", err)
		return 2
	}

	log := logger.New(logger.Config{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
	})
	log.Info("tuneid starting", "version", version)

	if !cfg.Credentials.Configured() {
		log.Error("recognition credentials missing",
			"hint", fmt.Sprintf("set %s, %s and %s in your environment or .env file",
				config.EnvAccessKey, config.EnvAccessSecret, config.EnvHost))
		return 2
	}

	url := cfg.URL
	if url == "" {
		url = promptURL()
	}
	if url == "" {
		log.Error("no source URL provided")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workDir, err := pipeline.Workspace(cfg.WorkDir)
	if err != nil {
		log.Error("failed to create workspace", "error", err)
		return 1
	}
	log.Debug("workspace ready", "dir", workDir)

	fetcher := fetch.NewService(workDir, log)
	separator := separate.NewService(workDir, log)
	planner := segment.NewPlanner(cfg.SegmentCount, cfg.SegmentLength, cfg.LeadIn)
	extractor := segment.NewExtractor(workDir, log)
	identifier := acrcloud.New(cfg.Credentials, cfg.HTTPTimeout, log)

	runner := pipeline.NewRunner(cfg, log, fetcher, separator, planner, extractor, segment.Duration, identifier)
	defer runner.Cleanup(workDir)

	summary, err := runner.Run(ctx, url)
	if err != nil {
		log.Error("pipeline failed", "code", errs.CodeOf(err), "error", err)
		return 1
	}

	fmt.Println()
	report.Render(os.Stdout, *summary)
	return 0
}

// promptURL asks for a URL interactively when none was given on the
// command line and stdin is a terminal.
func promptURL() string {
	info, err := os.Stdin.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice == 0 {
		return ""
	}

	fmt.Fprint(os.Stderr, "Enter short video URL: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}
