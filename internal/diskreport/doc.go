// Package diskreport computes disk-usage statistics for a directory tree.
//
// It sizes directories by summing the regular files they contain, ranks the
// largest files, and builds a two-level report of directory sizes: every
// top-level directory of the root followed by its immediate subdirectories.
// Unreadable nodes are skipped and surfaced as diagnostics on the results.
package diskreport
