package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/diskreport/internal/diskreport"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// Text writes the plain text blocks: ranked files, then layered sizes,
// then volume usage when present, separated by blank lines.
type Text struct {
	W io.Writer
}

// Emit writes the report blocks.
func (t Text) Emit(_ context.Context, report *diskreport.Report) error {
	blocks := []string{TopFilesBlock(report), LayeredBlock(report)}
	if v := VolumeBlock(report); v != "" {
		blocks = append(blocks, v)
	}

	_, err := io.WriteString(t.W, strings.Join(blocks, "\n"))

	return err
}

// JSON writes the report as indented JSON.
type JSON struct {
	W io.Writer
}

// Emit outputs statistics in JSON format.
func (j JSON) Emit(_ context.Context, report *diskreport.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(j.W, string(data)); err != nil {
		return err
	}

	return nil
}

// Table writes the report in a human-readable table format.
type Table struct {
	W io.Writer
}

// Emit outputs statistics in human-readable table format.
//
//nolint:forbidigo,gosec // This function prints output; sizes are never negative.
func (t Table) Emit(_ context.Context, report *diskreport.Report) error {
	w := tabwriter.NewWriter(t.W, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintf(w, "\nTop %d files:\t\t\n", report.TopN)

	for i, f := range report.TopFiles {
		fmt.Fprintf(w, "  %d) '%s'\t%s\n", i+1, f.Path, humanize.IBytes(uint64(f.Size)))
	}

	fmt.Fprintln(w, "\nDirectories:\t\t")

	for _, e := range report.Layers {
		name := e.Name
		if e.Depth > 0 {
			name = "  └ " + name
		}

		fmt.Fprintf(w, "  %s\t%s\n", name, humanize.IBytes(uint64(e.Bytes)))
	}

	if v := report.Volume; v != nil {
		fmt.Fprintln(w, "\nVolume:\t\t")
		fmt.Fprintf(w, "Path:\t%s (%s)\n", v.Path, v.Fstype)
		fmt.Fprintf(w, "Used:\t%s of %s (%.1f%%)\n", humanize.IBytes(v.Used), humanize.IBytes(v.Total), v.UsedPercent)
		fmt.Fprintf(w, "Free:\t%s\n", humanize.IBytes(v.Free))
	}

	// Stats summary
	fmt.Fprintln(w, "\nStats:\t\t")
	fmt.Fprintf(w, "Skipped paths:\t%d\n", len(report.Diagnostics))
	fmt.Fprintf(w, "\nElapsed:\t%v\n", report.Elapsed)

	return w.Flush()
}
