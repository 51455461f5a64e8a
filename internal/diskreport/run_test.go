package diskreport_test

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/diskreport/internal/diskreport"
	"github.com/idelchi/diskreport/internal/walker/walkertest"
)

func TestScannerRun(t *testing.T) {
	base := walkertest.Tree(t, map[string]int{
		"/root/file.txt":     5,
		"/root/dirA/x.txt":   700,
		"/root/dirA/sub/y":   300,
		"/root/dirB/":        0,
		"/root/locked/z.txt": 9999,
	})
	s := diskreport.New(walkertest.Deny(base, "/root/locked"), diskreport.Config{})

	report, err := s.Run(context.Background(), diskreport.Options{Path: "/root/", TopN: 2}, nil)
	require.NoError(t, err)

	assert.Equal(t, "/root", report.Root)
	assert.Equal(t, 2, report.TopN)
	assert.Equal(t, []diskreport.FileEntry{
		{Path: "/root/dirA/x.txt", Size: 700},
		{Path: "/root/dirA/sub/y", Size: 300},
	}, report.TopFiles)
	assert.Equal(t, []diskreport.LayeredEntry{
		{Path: "/root/dirA", Name: "dirA", Depth: 0, Bytes: 1000},
		{Path: "/root/dirA/sub", Name: "sub", Depth: 1, Bytes: 300},
		{Path: "/root/dirB", Name: "dirB", Depth: 0, Bytes: 0},
	}, report.Layers)
	assert.Nil(t, report.Volume)

	// the locked directory is reported by the ranking walk and by its own sizing
	for _, d := range report.Diagnostics {
		assert.Equal(t, "/root/locked", d.Path)
	}

	assert.Len(t, report.Diagnostics, 2)
}

func TestScannerRunUnreadableRoot(t *testing.T) {
	fsys := walkertest.Tree(t, map[string]int{"/elsewhere/": 0})

	report, err := diskreport.New(fsys, diskreport.Config{}).
		Run(context.Background(), diskreport.Options{Path: "/root", TopN: diskreport.DefaultTopN}, nil)
	require.NoError(t, err)

	assert.Empty(t, report.TopFiles)
	assert.Empty(t, report.Layers)
	require.Len(t, report.Diagnostics, 2)
	assert.True(t, report.Diagnostics[0].Root)
	assert.True(t, report.Diagnostics[1].Root)
}

func TestScannerRunCancelled(t *testing.T) {
	fsys := walkertest.Tree(t, map[string]int{"/root/a/b": 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := diskreport.New(fsys, diskreport.Config{}).Run(ctx, diskreport.Options{Path: "/root", TopN: 1}, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunNativeWithVolumeAndProgress(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "d", "big"), 4096)
	writeFile(t, filepath.Join(root, "d", "e", "small"), 16)

	var calls atomic.Int64

	report, err := diskreport.Run(context.Background(), diskreport.Options{
		Path:             root,
		TopN:             diskreport.DefaultTopN,
		Volume:           true,
		ProgressInterval: time.Millisecond,
	}, nil, func(int64, int64) {
		calls.Add(1)
	})
	require.NoError(t, err)

	assert.Len(t, report.TopFiles, 2)
	assert.Equal(t, []diskreport.LayeredEntry{
		{Path: filepath.Join(root, "d"), Name: "d", Depth: 0, Bytes: 4112},
		{Path: filepath.Join(root, "d", "e"), Name: "e", Depth: 1, Bytes: 16},
	}, report.Layers)
	require.NotNil(t, report.Volume)
	assert.Positive(t, report.Volume.Total)
	assert.Empty(t, report.Diagnostics)
}
