package walker

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-billy/v5"
)

// ChildError is a directory child that was listed but could not be stat'd,
// typically because it was deleted between the listing and the stat.
type ChildError struct {
	Name string
	Err  error
}

// EntryLister is implemented by filesystems that report unreadable children
// one by one instead of failing the listing of their parent.
type EntryLister interface {
	ListDir(dir string) ([]os.FileInfo, []ChildError, error)
}

// ReadDir lists dir in name order. Children that could not be stat'd are
// returned as diagnostics and left out; err is only set when dir itself
// cannot be listed.
func ReadDir(fsys billy.Filesystem, dir string) ([]os.FileInfo, []Diagnostic, error) {
	var (
		infos  []os.FileInfo
		failed []ChildError
		err    error
	)

	if lister, ok := fsys.(EntryLister); ok {
		infos, failed, err = lister.ListDir(dir)
	} else {
		infos, err = fsys.ReadDir(dir)
	}

	if err != nil {
		return nil, nil, err
	}

	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].Name() < infos[j].Name()
	})

	diags := make([]Diagnostic, 0, len(failed))
	for _, f := range failed {
		diags = append(diags, Diagnostic{Path: filepath.Join(dir, f.Name), Op: OpInfo, Err: f.Err})
	}

	sort.Slice(diags, func(i, j int) bool {
		return diags[i].Path < diags[j].Path
	})

	return infos, diags, nil
}
