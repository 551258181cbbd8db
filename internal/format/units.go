package format

import (
	"fmt"
	"math"
)

// Bytes renders a byte count with a binary unit
func Bytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Duration renders milliseconds, switching to seconds from one second up
func Duration(ms float64) string {
	if math.IsNaN(ms) || ms < 0 {
		ms = 0
	}
	if ms < 1000 {
		return fmt.Sprintf("%.0fms", ms)
	}
	return fmt.Sprintf("%.2fs", ms/1000)
}

// Percent renders a 0..1 ratio as a percentage
func Percent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// StatusColor returns the tview colour for a status bucket such as "4xx"
func StatusColor(bucket string) string {
	if bucket == "" {
		return "white"
	}
	switch bucket[0] {
	case '2':
		return "green"
	case '3':
		return "yellow"
	case '4':
		return "orange"
	case '5':
		return "red"
	default:
		return "gray"
	}
}
