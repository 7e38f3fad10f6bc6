package cmp

import (
	"github.com/dustin/go-humanize"
)

// FormatDataUsageBytes renders a byte count for display, e.g. 2048 as "2.0 KiB".
// Negative counts are shown as zero.
func FormatDataUsageBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
