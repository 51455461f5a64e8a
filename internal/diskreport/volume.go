package diskreport

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/disk"
)

// VolumeUsage describes the filesystem that holds a path.
type VolumeUsage struct {
	Path        string  `json:"path"`
	Fstype      string  `json:"fstype"`
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"used_percent"`
}

// Volume returns the usage of the filesystem holding path.
func Volume(ctx context.Context, path string) (*VolumeUsage, error) {
	stat, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("reading usage of %q: %w", path, err)
	}

	return &VolumeUsage{
		Path:        stat.Path,
		Fstype:      stat.Fstype,
		Total:       stat.Total,
		Used:        stat.Used,
		Free:        stat.Free,
		UsedPercent: stat.UsedPercent,
	}, nil
}
