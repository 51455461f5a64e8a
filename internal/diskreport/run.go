package diskreport

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// startProgressReporter invokes hook(files, bytes) on each tick until ctx is done.
func startProgressReporter(ctx context.Context, s *Scanner, hook func(int64, int64), interval time.Duration) {
	if hook == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(s.Seen())
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Run scans opt.Path on the host filesystem. See Scanner.Run.
func Run(ctx context.Context, opt Options, log *zap.Logger, progressHook func(int64, int64)) (*Report, error) {
	scanner := NewNative(Config{
		Logger:  log,
		Workers: opt.Workers,
		Memoize: opt.Memoize,
	})

	return scanner.Run(ctx, opt, progressHook)
}

// Run ranks the largest files under opt.Path and builds the layered directory
// report, returning both together with every diagnostic encountered.
//
// Unreadable nodes, including an unreadable root, never fail the scan; they
// shrink totals and omit entries instead. Only a cancelled ctx returns an error.
// Progress updates are sent to progressHook if provided.
func (s *Scanner) Run(ctx context.Context, opt Options, progressHook func(int64, int64)) (*Report, error) {
	if opt.Path == "" {
		opt.Path = "."
	}

	opt.Path = filepath.Clean(opt.Path)

	// Create child context to ensure progress reporter cleanup
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startProgressReporter(ctx, s, progressHook, opt.ProgressInterval)

	s.log.Debug("starting scan",
		zap.String("root", opt.Path),
		zap.Int("top", opt.TopN),
		zap.Int("workers", s.workers),
		zap.Bool("memoize", s.memoize),
	)

	start := time.Now()

	ranked, err := s.TopFiles(ctx, opt.Path, opt.TopN)
	if err != nil {
		return nil, err
	}

	layers, err := s.LayeredSizes(ctx, opt.Path)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Root:     opt.Path,
		TopN:     opt.TopN,
		TopFiles: ranked.Files,
		Layers:   layers.Entries,
	}

	report.Diagnostics = mergeDiagnostics(report.Diagnostics, ranked.Diagnostics...)
	report.Diagnostics = mergeDiagnostics(report.Diagnostics, layers.Diagnostics...)

	if opt.Volume {
		volume, err := Volume(ctx, opt.Path)
		if err != nil {
			s.log.Warn("reading volume usage", zap.String("path", opt.Path), zap.Error(err))
		} else {
			report.Volume = volume
		}
	}

	report.Elapsed = time.Since(start)

	files, bytes := s.Seen()
	s.log.Debug("scan finished",
		zap.Int64("files_seen", files),
		zap.Int64("bytes_seen", bytes),
		zap.Int("diagnostics", len(report.Diagnostics)),
		zap.Duration("elapsed", report.Elapsed),
	)

	return report, nil
}
