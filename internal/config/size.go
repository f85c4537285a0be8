package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseByteSize parses a human-readable size string into bytes.
// Supports: 100, 100B, 100K, 100M, 100G, 100T and the KiB/MiB/... spellings,
// case-insensitive. Uses powers of 1024.
func ParseByteSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	upper := strings.ToUpper(s)
	// Normalize "512MiB" / "512MB" to "512M"; a trailing B after a unit
	// letter is decorative.
	if trimmed := strings.TrimSuffix(upper, "IB"); trimmed != upper && trimmed != "" {
		upper = trimmed
	} else if len(upper) > 1 && strings.HasSuffix(upper, "B") {
		if prev := upper[len(upper)-2]; prev == 'K' || prev == 'M' || prev == 'G' || prev == 'T' {
			upper = upper[:len(upper)-1]
		}
	}

	multiplier := int64(1)
	numStr := upper

	switch last := upper[len(upper)-1:]; last {
	case "B":
		multiplier = 1
		numStr = upper[:len(upper)-1]
	case "K":
		multiplier = 1024
		numStr = upper[:len(upper)-1]
	case "M":
		multiplier = 1024 * 1024
		numStr = upper[:len(upper)-1]
	case "G":
		multiplier = 1024 * 1024 * 1024
		numStr = upper[:len(upper)-1]
	case "T":
		multiplier = 1024 * 1024 * 1024 * 1024
		numStr = upper[:len(upper)-1]
	default:
		// No suffix, try parsing as plain number.
	}

	if numStr == "" {
		return 0, fmt.Errorf("invalid size: %q", s)
	}

	// Try integer first, then float.
	if n, err := strconv.ParseInt(numStr, 10, 64); err == nil {
		return n * multiplier, nil
	}

	f, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size: %q", s)
	}

	return int64(f * float64(multiplier)), nil
}
