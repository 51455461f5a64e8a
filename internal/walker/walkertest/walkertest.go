// Package walkertest provides in-memory trees and fault injection for walker tests.
package walkertest

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/idelchi/diskreport/internal/walker"
)

// Tree builds an in-memory filesystem from a layout.
//
// Keys are absolute slash paths. A key ending in "/" is a directory, any other
// key is a file of the given size.
func Tree(t *testing.T, layout map[string]int) billy.Filesystem {
	t.Helper()

	fsys := memfs.New()

	for p, size := range layout {
		if strings.HasSuffix(p, "/") {
			if err := fsys.MkdirAll(filepath.FromSlash(p), 0o755); err != nil {
				t.Fatalf("creating directory %q: %v", p, err)
			}

			continue
		}

		if err := fsys.MkdirAll(filepath.FromSlash(path.Dir(p)), 0o755); err != nil {
			t.Fatalf("creating parent of %q: %v", p, err)
		}

		if err := util.WriteFile(fsys, filepath.FromSlash(p), make([]byte, size), 0o644); err != nil {
			t.Fatalf("writing %q: %v", p, err)
		}
	}

	return fsys
}

// DeniedFS fails ReadDir and Stat for the configured paths with a permission error.
type DeniedFS struct {
	billy.Filesystem

	denied map[string]struct{}
}

// Deny wraps fsys so that the given directories cannot be listed or stat'd.
func Deny(fsys billy.Filesystem, paths ...string) *DeniedFS {
	denied := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		denied[filepath.Clean(filepath.FromSlash(p))] = struct{}{}
	}

	return &DeniedFS{Filesystem: fsys, denied: denied}
}

func (d *DeniedFS) isDenied(p string) bool {
	_, ok := d.denied[filepath.Clean(p)]

	return ok
}

// ReadDir lists a directory unless it is denied.
func (d *DeniedFS) ReadDir(p string) ([]os.FileInfo, error) {
	if d.isDenied(p) {
		return nil, &os.PathError{Op: "open", Path: p, Err: os.ErrPermission}
	}

	return d.Filesystem.ReadDir(p)
}

// Stat stats a path unless it is denied.
func (d *DeniedFS) Stat(p string) (os.FileInfo, error) {
	if d.isDenied(p) {
		return nil, &os.PathError{Op: "stat", Path: p, Err: os.ErrPermission}
	}

	return d.Filesystem.Stat(p)
}

// VanishedFS simulates children deleted between listing their parent and
// stat'ing them. ReadDir fails the whole parent the way the billy host
// filesystem does, while ListDir reports each vanished child on its own.
type VanishedFS struct {
	billy.Filesystem

	vanished map[string]struct{}
}

// Vanish wraps fsys so that the given paths disappear once they are listed.
func Vanish(fsys billy.Filesystem, paths ...string) *VanishedFS {
	vanished := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		vanished[filepath.Clean(filepath.FromSlash(p))] = struct{}{}
	}

	return &VanishedFS{Filesystem: fsys, vanished: vanished}
}

func (v *VanishedFS) isVanished(p string) bool {
	_, ok := v.vanished[filepath.Clean(p)]

	return ok
}

// ListDir lists a directory and reports vanished children separately.
func (v *VanishedFS) ListDir(dir string) ([]os.FileInfo, []walker.ChildError, error) {
	infos, err := v.Filesystem.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}

	kept := make([]os.FileInfo, 0, len(infos))

	var failed []walker.ChildError

	for _, info := range infos {
		child := filepath.Join(dir, info.Name())
		if v.isVanished(child) {
			failed = append(failed, walker.ChildError{
				Name: info.Name(),
				Err:  &os.PathError{Op: "lstat", Path: child, Err: os.ErrNotExist},
			})

			continue
		}

		kept = append(kept, info)
	}

	return kept, failed, nil
}

// ReadDir fails when any child of dir has vanished.
func (v *VanishedFS) ReadDir(dir string) ([]os.FileInfo, error) {
	infos, failed, err := v.ListDir(dir)
	if err != nil {
		return nil, err
	}

	if len(failed) > 0 {
		return nil, failed[0].Err
	}

	return infos, nil
}

// Stat stats a path unless it has vanished.
func (v *VanishedFS) Stat(p string) (os.FileInfo, error) {
	if v.isVanished(p) {
		return nil, &os.PathError{Op: "stat", Path: p, Err: os.ErrNotExist}
	}

	return v.Filesystem.Stat(p)
}

// Lstat stats a path unless it has vanished.
func (v *VanishedFS) Lstat(p string) (os.FileInfo, error) {
	if v.isVanished(p) {
		return nil, &os.PathError{Op: "lstat", Path: p, Err: os.ErrNotExist}
	}

	return v.Filesystem.Lstat(p)
}
