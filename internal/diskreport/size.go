package diskreport

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"

	"github.com/idelchi/diskreport/internal/walker"
)

// SizeOf returns the total size of all regular files below path.
// Unreadable subtrees contribute 0 and are listed in the result diagnostics.
func (s *Scanner) SizeOf(ctx context.Context, path string) (SizeResult, error) {
	if s.native && s.workers > 1 {
		return s.sizeParallel(ctx, path)
	}

	var total int64

	diags, err := walker.Walk(ctx, s.fsys, path, func(e walker.Entry) error {
		if e.Kind == walker.KindFile {
			total += e.Size
			s.seen(e.Size)
		}

		return nil
	})

	s.diagnose(diags)

	if err != nil {
		return SizeResult{}, fmt.Errorf("sizing %q: %w", path, err)
	}

	s.log.Debug("sized directory", zap.String("path", path), zap.Int64("bytes", total))

	return SizeResult{Path: path, Bytes: total, Diagnostics: diags}, nil
}

// sizeParallel sizes path on the native filesystem with fastwalk.
// The sum does not depend on visit order, so the result matches SizeOf's
// sequential walk for a static tree.
func (s *Scanner) sizeParallel(ctx context.Context, path string) (SizeResult, error) {
	ps := &parallelSize{s: s, root: filepath.Clean(path)}

	info, err := os.Stat(ps.root)
	if err != nil {
		ps.record(path, walker.OpStat, err)
		s.diagnose(ps.diags)

		return SizeResult{Path: path, Diagnostics: ps.diags}, nil
	}

	if !info.IsDir() {
		if info.Mode().IsRegular() {
			ps.add(info.Size())
		}

		return SizeResult{Path: path, Bytes: ps.total.Load()}, nil
	}

	conf := &fastwalk.Config{
		Follow:     false, // Don't follow symlinks
		NumWorkers: s.workers,
	}

	if err := ps.finish(ctx, fastwalk.Walk(conf, ps.root, ps.visit(ctx))); err != nil {
		return SizeResult{}, fmt.Errorf("sizing %q: %w", path, err)
	}

	s.diagnose(ps.diags)

	s.log.Debug("sized directory",
		zap.String("path", path),
		zap.Int64("bytes", ps.total.Load()),
		zap.Int("workers", s.workers),
	)

	return SizeResult{Path: path, Bytes: ps.total.Load(), Diagnostics: ps.diags}, nil
}

// parallelSize collects the total and the diagnostics of one fastwalk run.
type parallelSize struct {
	s     *Scanner
	root  string
	total atomic.Int64

	mu    sync.Mutex
	diags []walker.Diagnostic
}

func (ps *parallelSize) add(size int64) {
	ps.total.Add(size)
	ps.s.seen(size)
}

func (ps *parallelSize) record(p, op string, err error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.diags = append(ps.diags, walker.Diagnostic{Path: p, Op: op, Err: err, Root: filepath.Clean(p) == ps.root})
}

// visit returns the fastwalk callback. Failing nodes are recorded and
// skipped; only a done ctx stops the walk.
//
//nolint:varnamelen // d is standard for DirEntry
func (ps *parallelSize) visit(ctx context.Context) fs.WalkDirFunc {
	return func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			ps.record(p, walker.OpReadDir, err)

			return nil // Skip the node, keep walking siblings
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if !d.Type().IsRegular() {
			return nil
		}

		fileInfo, err := d.Info()
		if err != nil {
			ps.record(p, walker.OpInfo, err)

			return nil
		}

		ps.add(fileInfo.Size())

		return nil
	}
}

// finish turns the error fastwalk returned into the walk outcome: a done ctx
// aborts, anything else means the root itself could not be walked.
func (ps *parallelSize) finish(ctx context.Context, walkErr error) error {
	if walkErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		ps.record(ps.root, walker.OpReadDir, walkErr)
	}

	// fastwalk reports failures in completion order
	sort.Slice(ps.diags, func(i, j int) bool {
		return ps.diags[i].Path < ps.diags[j].Path
	})

	return nil
}
