package diskreport

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/diskreport/internal/walker"
)

type fakeEntry struct {
	name    string
	mode    fs.FileMode
	size    int64
	infoErr error
}

func (e fakeEntry) Name() string      { return e.name }
func (e fakeEntry) IsDir() bool       { return e.mode.IsDir() }
func (e fakeEntry) Type() fs.FileMode { return e.mode.Type() }

func (e fakeEntry) Info() (fs.FileInfo, error) {
	if e.infoErr != nil {
		return nil, e.infoErr
	}

	return fakeInfo(e), nil
}

type fakeInfo fakeEntry

func (i fakeInfo) Name() string       { return i.name }
func (i fakeInfo) Size() int64        { return i.size }
func (i fakeInfo) Mode() fs.FileMode  { return i.mode }
func (i fakeInfo) ModTime() time.Time { return time.Time{} }
func (i fakeInfo) IsDir() bool        { return i.mode.IsDir() }
func (i fakeInfo) Sys() any           { return nil }

func newParallelSize(root string) *parallelSize {
	return &parallelSize{s: New(nil, Config{}), root: root}
}

func TestParallelSizeVisit(t *testing.T) {
	ps := newParallelSize("/data")
	visit := ps.visit(context.Background())

	denied := &os.PathError{Op: "open", Path: "/data/locked", Err: os.ErrPermission}
	gone := &os.PathError{Op: "lstat", Path: "/data/b.bin", Err: os.ErrNotExist}

	require.NoError(t, visit("/data/locked", nil, denied))
	require.NoError(t, visit("/data/a.bin", fakeEntry{name: "a.bin", size: 40}, nil))
	require.NoError(t, visit("/data/b.bin", fakeEntry{name: "b.bin", infoErr: gone}, nil))
	require.NoError(t, visit("/data/sub", fakeEntry{name: "sub", mode: fs.ModeDir}, nil))
	require.NoError(t, visit("/data/link", fakeEntry{name: "link", mode: fs.ModeSymlink, size: 9}, nil))

	assert.Equal(t, int64(40), ps.total.Load())

	files, bytes := ps.s.Seen()
	assert.Equal(t, int64(1), files)
	assert.Equal(t, int64(40), bytes)

	require.Len(t, ps.diags, 2)
	assert.Equal(t, walker.Diagnostic{Path: "/data/locked", Op: walker.OpReadDir, Err: denied}, ps.diags[0])
	assert.Equal(t, walker.Diagnostic{Path: "/data/b.bin", Op: walker.OpInfo, Err: gone}, ps.diags[1])
}

func TestParallelSizeVisitRoot(t *testing.T) {
	ps := newParallelSize("/data")

	require.NoError(t, ps.visit(context.Background())("/data/", nil, os.ErrPermission))

	require.Len(t, ps.diags, 1)
	assert.True(t, ps.diags[0].Root)
	assert.True(t, walker.RootUnreadable(ps.diags))
}

func TestParallelSizeVisitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ps := newParallelSize("/data")

	err := ps.visit(ctx)("/data/a.bin", fakeEntry{name: "a.bin", size: 40}, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, ps.total.Load())
}

func TestParallelSizeFinish(t *testing.T) {
	t.Run("walk error marks the root unreadable", func(t *testing.T) {
		ps := newParallelSize("/data")
		ps.record("/data/z", walker.OpReadDir, os.ErrPermission)
		ps.record("/data/a", walker.OpInfo, os.ErrNotExist)

		walkErr := errors.New("directory removed")
		require.NoError(t, ps.finish(context.Background(), walkErr))

		require.Len(t, ps.diags, 3)
		assert.Equal(t, []string{"/data", "/data/a", "/data/z"},
			[]string{ps.diags[0].Path, ps.diags[1].Path, ps.diags[2].Path})
		assert.True(t, ps.diags[0].Root)
		assert.ErrorIs(t, ps.diags[0], walkErr)
	})

	t.Run("done context aborts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		ps := newParallelSize("/data")

		require.ErrorIs(t, ps.finish(ctx, context.Canceled), context.Canceled)
		assert.Empty(t, ps.diags)
	})

	t.Run("clean walk", func(t *testing.T) {
		ps := newParallelSize("/data")

		require.NoError(t, ps.finish(context.Background(), nil))
		assert.Empty(t, ps.diags)
	})
}
