package tree

import "fmt"

// FormatBytes renders a size with an adaptive unit, e.g. "12.3 MB".
func FormatBytes(size int64) string {
	const unit = 1000
	if size < 0 {
		return "0 bytes"
	}
	if size < unit {
		if size == 1 {
			return "1 byte"
		}
		return fmt.Sprintf("%d bytes", size)
	}

	units := []string{"KB", "MB", "GB", "TB"}
	value := float64(size) / unit
	i := 0
	for value >= unit && i < len(units)-1 {
		value /= unit
		i++
	}
	return fmt.Sprintf("%.1f %s", value, units[i])
}
