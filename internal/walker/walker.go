// Package walker provides a sequential, depth-first traversal of a directory tree
// that skips unreadable nodes instead of failing.
//
// Entries are produced in pre-order with the children of each directory visited
// in lexical name order. A directory whose contents cannot be listed is reported
// as a Diagnostic and its subtree is skipped; siblings and ancestors are still visited.
// On filesystems implementing EntryLister a child that fails to stat is skipped
// on its own.
package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
)

// SkipDir can be returned by a Func for a directory entry to skip its subtree.
var SkipDir = fs.SkipDir

// Kind classifies a filesystem entry.
type Kind uint8

const (
	// KindFile is a regular file.
	KindFile Kind = iota
	// KindDir is a directory.
	KindDir
	// KindOther is anything else: symbolic links, devices, sockets, pipes.
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	default:
		return "other"
	}
}

// KindFromMode derives the Kind from a file mode.
func KindFromMode(mode os.FileMode) Kind {
	switch {
	case mode.IsRegular():
		return KindFile
	case mode.IsDir():
		return KindDir
	default:
		return KindOther
	}
}

// Entry is a single visited node.
type Entry struct {
	// Path is the root joined with the relative location of the node.
	Path string
	// Name is the base name of the node.
	Name string
	// Kind is the node type.
	Kind Kind
	// Size is the byte size for regular files and 0 for everything else.
	Size int64
	// Depth is 0 for the root, 1 for its immediate children and so on.
	Depth int
}

// Func is called for every visited entry. Returning SkipDir for a directory
// skips its subtree, any other non-nil error aborts the walk.
type Func func(Entry) error

// Walk traverses the tree at root on fsys and calls fn for each entry.
//
// The returned diagnostics describe every node that could not be read.
// The returned error is only non-nil when ctx is done or fn aborted the walk.
func Walk(ctx context.Context, fsys billy.Filesystem, root string, fn Func) ([]Diagnostic, error) {
	w := &walk{fsys: fsys, fn: fn}

	info, err := fsys.Stat(root)
	if err != nil {
		w.diagnose(root, OpStat, err, true)

		return w.diags, nil
	}

	entry := Entry{
		Path: root,
		Name: filepath.Base(root),
		Kind: KindFromMode(info.Mode()),
	}
	if entry.Kind == KindFile {
		entry.Size = info.Size()
	}

	if err := w.visit(ctx, entry); err != nil {
		return w.diags, err
	}

	return w.diags, nil
}

type walk struct {
	fsys  billy.Filesystem
	fn    Func
	diags []Diagnostic
}

func (w *walk) diagnose(path, op string, err error, root bool) {
	w.diags = append(w.diags, Diagnostic{Path: path, Op: op, Err: err, Root: root})
}

func (w *walk) visit(ctx context.Context, entry Entry) error {
	if err := w.fn(entry); err != nil {
		if entry.Kind == KindDir && errors.Is(err, SkipDir) {
			return nil
		}

		return err
	}

	if entry.Kind != KindDir {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("walking %q: %w", entry.Path, err)
	}

	infos, failed, err := ReadDir(w.fsys, entry.Path)
	if err != nil {
		w.diagnose(entry.Path, OpReadDir, err, entry.Depth == 0)

		return nil
	}

	w.diags = append(w.diags, failed...)

	for _, info := range infos {
		child := Entry{
			Path:  filepath.Join(entry.Path, info.Name()),
			Name:  info.Name(),
			Kind:  KindFromMode(info.Mode()),
			Depth: entry.Depth + 1,
		}
		if child.Kind == KindFile {
			child.Size = info.Size()
		}

		if err := w.visit(ctx, child); err != nil {
			return err
		}
	}

	return nil
}
