package diskreport

import (
	"time"

	"github.com/idelchi/diskreport/internal/walker"
)

// DefaultTopN is the number of ranked files when none is requested.
const DefaultTopN = 20

// FileEntry represents a single file path and size.
type FileEntry struct {
	// Path is the file path as walked from the root.
	Path string `json:"path"`
	// Size is the size in bytes.
	Size int64 `json:"size"`
}

// LayeredEntry is one line of the layered directory report.
type LayeredEntry struct {
	// Path is the directory path.
	Path string `json:"path"`
	// Name is the base name of the directory.
	Name string `json:"name"`
	// Depth is 0 for a top-level directory and 1 for one of its subdirectories.
	Depth int `json:"depth"`
	// Bytes is the total size of all files below the directory.
	Bytes int64 `json:"bytes"`
}

// SizeResult is the outcome of sizing one directory.
type SizeResult struct {
	Path        string
	Bytes       int64
	Diagnostics []walker.Diagnostic
}

// RankResult is the outcome of ranking the largest files under a root.
type RankResult struct {
	Root        string
	Files       []FileEntry
	Diagnostics []walker.Diagnostic
}

// LayeredResult is the outcome of the layered directory report.
type LayeredResult struct {
	Root        string
	Entries     []LayeredEntry
	Diagnostics []walker.Diagnostic
}

// Report holds everything a single scan produced.
type Report struct {
	// Root is the scanned path.
	Root string `json:"root"`
	// TopN is the requested number of ranked files.
	TopN int `json:"top_n"`
	// TopFiles contains at most TopN files, largest first.
	TopFiles []FileEntry `json:"top_files"`
	// Layers contains the layered directory sizes in listing order.
	Layers []LayeredEntry `json:"layers"`
	// Volume describes the filesystem holding Root, when requested.
	Volume *VolumeUsage `json:"volume,omitempty"`
	// Diagnostics lists every node that was skipped.
	Diagnostics []walker.Diagnostic `json:"diagnostics"`
	// Elapsed is the total time taken for the scan.
	Elapsed time.Duration `json:"elapsed"`
}

// Options configures a scan and CLI behavior.
type Options struct {
	// Path is the directory to analyze.
	Path string
	// TopN is the number of largest files to rank.
	TopN int
	// Workers enables parallel directory sizing when greater than 1.
	Workers int
	// Memoize computes the layered report in a single pass.
	Memoize bool
	// Volume adds filesystem usage of Path to the report.
	Volume bool
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Debug indicates whether debug output is enabled.
	Debug bool
	// Output represents output format (text, table or json).
	Output string
	// PromFile is an optional Prometheus textfile destination.
	PromFile string
}

// mergeDiagnostics appends the diagnostics of src not already present in dst.
// Redundant walks of the same subtree report the same failure more than once.
func mergeDiagnostics(dst []walker.Diagnostic, src ...walker.Diagnostic) []walker.Diagnostic {
	for _, d := range src {
		seen := false

		for _, have := range dst {
			if have.Path == d.Path && have.Op == d.Op {
				seen = true

				break
			}
		}

		if !seen {
			dst = append(dst, d)
		}
	}

	return dst
}
