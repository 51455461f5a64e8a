package report

import (
	"context"
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/idelchi/diskreport/internal/diskreport"
)

// Prom writes the report as a Prometheus textfile, for example into the
// directory read by the node exporter textfile collector.
type Prom struct {
	Path string
}

// Emit registers the report gauges on a fresh registry and writes them to p.Path.
func (p Prom) Emit(_ context.Context, report *diskreport.Report) error {
	registry := prometheus.NewRegistry()

	fileSize := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "diskreport_file_size_bytes",
			Help: "Size of the largest files found by the last scan",
		},
		[]string{"path", "rank"},
	)

	dirSize := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "diskreport_directory_size_bytes",
			Help: "Total size of top-level directories and their immediate subdirectories",
		},
		[]string{"path", "name", "depth"},
	)

	diagnostics := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "diskreport_diagnostics",
		Help: "Number of paths skipped because they could not be read",
	})

	duration := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "diskreport_scan_duration_seconds",
		Help: "Duration of the last scan",
	})

	registry.MustRegister(fileSize, dirSize, diagnostics, duration)

	for i, f := range report.TopFiles {
		fileSize.WithLabelValues(f.Path, strconv.Itoa(i+1)).Set(float64(f.Size))
	}

	for _, e := range report.Layers {
		dirSize.WithLabelValues(e.Path, e.Name, strconv.Itoa(e.Depth)).Set(float64(e.Bytes))
	}

	diagnostics.Set(float64(len(report.Diagnostics)))
	duration.Set(report.Elapsed.Seconds())

	if err := prometheus.WriteToTextfile(p.Path, registry); err != nil {
		return fmt.Errorf("writing prometheus textfile %q: %w", p.Path, err)
	}

	return nil
}
