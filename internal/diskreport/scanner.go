package diskreport

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/zap"

	"github.com/idelchi/diskreport/internal/walker"
)

// Config configures a Scanner.
type Config struct {
	// Logger receives diagnostics. Nil discards them.
	Logger *zap.Logger
	// Workers is the number of fastwalk workers used to size directories on
	// the native filesystem. Values below 2 keep sizing sequential.
	Workers int
	// Memoize builds the layered report from a single walk of the root.
	Memoize bool
}

// Scanner runs size, ranking and layered computations over a filesystem.
// A Scanner is meant for a single scan; it keeps counters and the set of
// diagnostics already logged.
type Scanner struct {
	fsys    billy.Filesystem
	native  bool
	log     *zap.Logger
	workers int
	memoize bool

	files atomic.Int64
	bytes atomic.Int64

	mu     sync.Mutex
	logged map[string]struct{}
}

// New creates a Scanner over fsys.
func New(fsys billy.Filesystem, cfg Config) *Scanner {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Scanner{
		fsys:    fsys,
		log:     log,
		workers: cfg.Workers,
		memoize: cfg.Memoize,
		logged:  make(map[string]struct{}),
	}
}

// nativeFS is a billy.Filesystem that acts like the host filesystem:
// paths are used as given instead of being confined to a base directory.
type nativeFS struct {
	osfs.ChrootOS
}

// Chroot returns a new filesystem rooted at the provided path.
//
//nolint:ireturn // billy.Filesystem is an interface; signature is dictated by upstream.
func (*nativeFS) Chroot(path string) (billy.Filesystem, error) {
	return osfs.New(path), nil
}

// Root returns the root path for this filesystem.
func (*nativeFS) Root() string {
	return string(filepath.Separator)
}

// ReadDir lists dir, leaving out children that could not be stat'd.
func (fsys *nativeFS) ReadDir(dir string) ([]os.FileInfo, error) {
	infos, _, err := fsys.ListDir(dir)

	return infos, err
}

// ListDir lists dir and stats every child on its own, so a child deleted
// between the listing and the stat does not fail its siblings.
func (*nativeFS) ListDir(dir string) ([]os.FileInfo, []walker.ChildError, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}

	infos := make([]os.FileInfo, 0, len(entries))

	var failed []walker.ChildError

	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			failed = append(failed, walker.ChildError{Name: entry.Name(), Err: err})

			continue
		}

		infos = append(infos, info)
	}

	return infos, failed, nil
}

// NewNative creates a Scanner over the host filesystem.
func NewNative(cfg Config) *Scanner {
	s := New(&nativeFS{}, cfg)
	s.native = true

	return s
}

// Seen returns the number of files and bytes visited so far. Subtrees walked
// more than once are counted every time.
func (s *Scanner) Seen() (files, bytes int64) {
	return s.files.Load(), s.bytes.Load()
}

func (s *Scanner) seen(size int64) {
	s.files.Add(1)
	s.bytes.Add(size)
}

// diagnose logs each diagnostic once per scanner.
func (s *Scanner) diagnose(diags []walker.Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range diags {
		key := d.Op + "\x00" + d.Path
		if _, ok := s.logged[key]; ok {
			continue
		}

		s.logged[key] = struct{}{}

		s.log.Warn("skipping unreadable path",
			zap.String("path", d.Path),
			zap.String("op", d.Op),
			zap.Bool("root", d.Root),
			zap.Error(d.Err),
		)
	}
}
