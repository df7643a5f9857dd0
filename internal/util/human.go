package util

import "fmt"

// Human formats a byte count with binary units.
func Human(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}

	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 3; m /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMGT"[exp])
}
