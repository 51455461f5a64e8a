package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/idelchi/diskreport/internal/diskreport"
	"github.com/idelchi/diskreport/internal/logging"
	"github.com/idelchi/diskreport/internal/report"
)

func logic(ctx context.Context, options diskreport.Options, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log := logging.New(logging.Config{Debug: options.Debug, Writer: stderr})
	defer func() { _ = log.Sync() }()

	enableProgress := options.Output != "json" &&
		!options.Debug &&
		stderr == os.Stderr &&
		isatty.IsTerminal(os.Stderr.Fd())

	// Simple progress callback that prints directly to stderr
	var progressHook func(files, bytes int64)

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(stderr, "\033[?25l")
		defer fmt.Fprint(stderr, "\033[?25h")

		progressHook = func(files, bytes int64) {
			msg := fmt.Sprintf("Scanning… %d files, %s",
				files, humanize.IBytes(uint64(bytes))) //nolint:gosec // Bytes is always positive
			fmt.Fprintf(stderr, "\r\033[2K%s\r", msg)
		}
	}

	stats, err := diskreport.Run(ctx, options, log, progressHook)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	sink, err := newSink(options, stdout)
	if err != nil {
		return err
	}

	log.Debug("emitting report", zap.String("output", options.Output), zap.String("prom_file", options.PromFile))

	return sink.Emit(ctx, stats)
}

// newSink returns the sink for the selected output, plus the Prometheus
// textfile when one was requested.
func newSink(options diskreport.Options, stdout io.Writer) (report.Sink, error) {
	var primary report.Sink

	switch options.Output {
	case "json":
		primary = report.JSON{W: stdout}
	case "table":
		primary = report.Table{W: stdout}
	case "text":
		primary = report.Text{W: stdout}
	default:
		return nil, fmt.Errorf("unknown output format: %s", options.Output)
	}

	if options.PromFile == "" {
		return primary, nil
	}

	return report.Multi{primary, report.Prom{Path: options.PromFile}}, nil
}
