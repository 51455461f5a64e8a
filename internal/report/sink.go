// Package report renders scan results and hands them to report sinks.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/idelchi/diskreport/internal/diskreport"
)

// GiB is the divisor used for the GB figures of the text blocks.
const GiB = 1 << 30

// Sink receives a finished report.
type Sink interface {
	Emit(ctx context.Context, report *diskreport.Report) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, report *diskreport.Report) error

// Emit calls f.
func (f SinkFunc) Emit(ctx context.Context, report *diskreport.Report) error {
	return f(ctx, report)
}

// Multi fans a report out to every sink in order and stops at the first error.
type Multi []Sink

// Emit emits the report to each sink.
func (m Multi) Emit(ctx context.Context, report *diskreport.Report) error {
	for _, sink := range m {
		if err := sink.Emit(ctx, report); err != nil {
			return err
		}
	}

	return nil
}

// GB formats bytes as gibibytes with two decimals.
func GB(bytes int64) string {
	return fmt.Sprintf("%.2f GB", float64(bytes)/GiB)
}

// TopFilesBlock renders the ranked files block.
func TopFilesBlock(report *diskreport.Report) string {
	lines := lo.Map(report.TopFiles, func(f diskreport.FileEntry, _ int) string {
		return fmt.Sprintf("%s - %s", f.Path, GB(f.Size))
	})

	return block(fmt.Sprintf("Top %d Largest Files:", report.TopN), lines)
}

// LayeredBlock renders the layered directory sizes block.
func LayeredBlock(report *diskreport.Report) string {
	lines := lo.Map(report.Layers, func(e diskreport.LayeredEntry, _ int) string {
		return fmt.Sprintf("%s = %s", e.Name, GB(e.Bytes))
	})

	return block("Layered Directory Sizes:", lines)
}

// VolumeBlock renders the volume usage block, or "" without volume data.
func VolumeBlock(report *diskreport.Report) string {
	v := report.Volume
	if v == nil {
		return ""
	}

	//nolint:gosec // volume sizes fit in int64
	line := fmt.Sprintf("%s = %s used of %s (%.1f%%)", v.Path, GB(int64(v.Used)), GB(int64(v.Total)), v.UsedPercent)

	return block("Volume Usage:", []string{line})
}

func block(header string, lines []string) string {
	return strings.Join(append([]string{header}, lines...), "\n") + "\n"
}
