package diskreport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/idelchi/diskreport/internal/walker"
)

// LayeredSizes reports the size of every directory directly below root,
// each followed by the sizes of its own immediate subdirectories.
//
// Files directly inside root are not reported. A directory that cannot be
// read is omitted. Every total is computed by its own walk unless the scanner
// memoizes, in which case a single walk of root produces the same entries.
func (s *Scanner) LayeredSizes(ctx context.Context, root string) (LayeredResult, error) {
	if s.memoize {
		return s.layeredSinglePass(ctx, root)
	}

	result := LayeredResult{Root: root, Entries: []LayeredEntry{}}

	tops, ok := s.listDirs(root, true, &result)
	if !ok {
		return result, nil
	}

	for _, top := range tops {
		dir := filepath.Join(root, top.Name())

		entry, ok, err := s.layeredEntry(ctx, dir, top.Name(), 0, &result)
		if err != nil {
			return LayeredResult{}, err
		}

		if !ok {
			continue
		}

		result.Entries = append(result.Entries, entry)

		subs, ok := s.listDirs(dir, false, &result)
		if !ok {
			continue
		}

		for _, sub := range subs {
			entry, ok, err := s.layeredEntry(ctx, filepath.Join(dir, sub.Name()), sub.Name(), 1, &result)
			if err != nil {
				return LayeredResult{}, err
			}

			if ok {
				result.Entries = append(result.Entries, entry)
			}
		}
	}

	return result, nil
}

// layeredEntry sizes dir and reports false when dir itself could not be read.
func (s *Scanner) layeredEntry(
	ctx context.Context,
	dir, name string,
	depth int,
	result *LayeredResult,
) (LayeredEntry, bool, error) {
	size, err := s.SizeOf(ctx, dir)
	if err != nil {
		return LayeredEntry{}, false, err
	}

	result.Diagnostics = mergeDiagnostics(result.Diagnostics, size.Diagnostics...)

	if walker.RootUnreadable(size.Diagnostics) {
		return LayeredEntry{}, false, nil
	}

	return LayeredEntry{Path: dir, Name: name, Depth: depth, Bytes: size.Bytes}, true, nil
}

// listDirs returns the immediate subdirectories of dir in name order.
func (s *Scanner) listDirs(dir string, root bool, result *LayeredResult) ([]os.FileInfo, bool) {
	infos, failed, err := walker.ReadDir(s.fsys, dir)
	if err != nil {
		diag := walker.Diagnostic{Path: dir, Op: walker.OpReadDir, Err: err, Root: root}
		s.diagnose([]walker.Diagnostic{diag})
		result.Diagnostics = mergeDiagnostics(result.Diagnostics, diag)

		return nil, false
	}

	s.diagnose(failed)
	result.Diagnostics = mergeDiagnostics(result.Diagnostics, failed...)

	return lo.Filter(infos, func(info os.FileInfo, _ int) bool {
		return walker.KindFromMode(info.Mode()) == walker.KindDir
	}), true
}

// layeredSinglePass builds the layered report from one walk of root.
// The walk is pre-order, so every file at depth 2 or deeper belongs to the
// most recent top-level directory, and every file at depth 3 or deeper to the
// most recent second-level directory.
func (s *Scanner) layeredSinglePass(ctx context.Context, root string) (LayeredResult, error) {
	var (
		entries []LayeredEntry
		top     = -1
		sub     = -1
	)

	diags, err := walker.Walk(ctx, s.fsys, root, func(e walker.Entry) error {
		switch {
		case e.Kind == walker.KindDir && e.Depth == 1:
			top, sub = len(entries), -1
			entries = append(entries, LayeredEntry{Path: e.Path, Name: e.Name, Depth: 0})
		case e.Kind == walker.KindDir && e.Depth == 2:
			sub = len(entries)
			entries = append(entries, LayeredEntry{Path: e.Path, Name: e.Name, Depth: 1})
		case e.Kind == walker.KindFile && e.Depth >= 2:
			s.seen(e.Size)
			entries[top].Bytes += e.Size

			if e.Depth >= 3 {
				entries[sub].Bytes += e.Size
			}
		}

		return nil
	})

	s.diagnose(diags)

	if err != nil {
		return LayeredResult{}, fmt.Errorf("sizing layers of %q: %w", root, err)
	}

	result := LayeredResult{Root: root, Entries: []LayeredEntry{}, Diagnostics: diags}
	if walker.RootUnreadable(diags) {
		return result, nil
	}

	unreadable := make(map[string]struct{}, len(diags))
	for _, d := range diags {
		unreadable[d.Path] = struct{}{}
	}

	result.Entries = lo.Filter(entries, func(e LayeredEntry, _ int) bool {
		_, skip := unreadable[e.Path]

		return !skip
	})

	s.log.Debug("sized layers in a single pass",
		zap.String("root", root),
		zap.Int("entries", len(result.Entries)),
	)

	return result, nil
}
