package diskreport

import (
	"context"
	"fmt"

	"github.com/emirpasic/gods/trees/binaryheap"
	"go.uber.org/zap"

	"github.com/idelchi/diskreport/internal/walker"
)

// TopFiles walks root once and returns its n largest files, largest first.
// Files of equal size keep the order in which they were discovered.
// A non-positive n yields an empty result without walking.
func (s *Scanner) TopFiles(ctx context.Context, root string, n int) (RankResult, error) {
	result := RankResult{Root: root, Files: []FileEntry{}}
	if n <= 0 {
		return result, nil
	}

	r := newRanker(n)

	diags, err := walker.Walk(ctx, s.fsys, root, func(e walker.Entry) error {
		if e.Kind == walker.KindFile {
			r.offer(FileEntry{Path: e.Path, Size: e.Size})
			s.seen(e.Size)
		}

		return nil
	})

	s.diagnose(diags)

	if err != nil {
		return RankResult{}, fmt.Errorf("ranking files under %q: %w", root, err)
	}

	result.Files = r.result()
	result.Diagnostics = diags

	s.log.Debug("ranked files",
		zap.String("root", root),
		zap.Int("offered", r.seq),
		zap.Int("kept", len(result.Files)),
	)

	return result, nil
}

type rankedFile struct {
	file FileEntry
	seq  int
}

// ranker keeps the n best files seen so far in a min-heap whose top is the
// file that would be evicted next: the smallest, and among equal sizes the
// one discovered last.
type ranker struct {
	n    int
	seq  int
	heap *binaryheap.Heap
}

func newRanker(n int) *ranker {
	return &ranker{
		n:    n,
		heap: binaryheap.NewWith(compareRanked),
	}
}

func compareRanked(a, b any) int {
	x, y := a.(rankedFile), b.(rankedFile) //nolint:forcetypeassert // heap only holds rankedFile

	switch {
	case x.file.Size < y.file.Size:
		return -1
	case x.file.Size > y.file.Size:
		return 1
	case x.seq > y.seq:
		return -1
	case x.seq < y.seq:
		return 1
	default:
		return 0
	}
}

func (r *ranker) offer(f FileEntry) {
	candidate := rankedFile{file: f, seq: r.seq}
	r.seq++

	if r.heap.Size() == r.n {
		worst, _ := r.heap.Peek()
		if compareRanked(candidate, worst) <= 0 {
			return
		}

		r.heap.Pop()
	}

	r.heap.Push(candidate)
}

// result drains the heap, best first.
func (r *ranker) result() []FileEntry {
	files := make([]FileEntry, r.heap.Size())

	for i := len(files) - 1; i >= 0; i-- {
		v, _ := r.heap.Pop()
		files[i] = v.(rankedFile).file //nolint:forcetypeassert // heap only holds rankedFile
	}

	return files
}
