package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Args holds the flags shared by every command.
type Args struct {
	Debug     bool
	Browser   bool // show the browser window instead of running headless
	LogFile   string
	DataDir   string
	LimitRate string
	UserAgent string
}

var rateLimitRe = regexp.MustCompile(`^([\d.]+)\s*([a-zA-Z]*)$`)

// ParseRateLimit converts inputs like "500k", "2MiB" or "inf" to bytes/second.
// Zero means unlimited.
func ParseRateLimit(input string) (float64, error) {
	if input == "" || strings.ToLower(input) == "inf" {
		return 0, nil
	}

	matches := rateLimitRe.FindStringSubmatch(input)
	if matches == nil {
		return 0, fmt.Errorf("invalid rate limit format: %s", input)
	}

	val, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}

	multiplier := 1.0
	switch strings.ToLower(matches[2]) {
	case "":
	case "k", "kb":
		multiplier = 1000
	case "ki", "kib":
		multiplier = 1024
	case "m", "mb":
		multiplier = 1000 * 1000
	case "mi", "mib":
		multiplier = 1024 * 1024
	case "g", "gb":
		multiplier = 1000 * 1000 * 1000
	case "gi", "gib":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unknown rate limit unit: %s", matches[2])
	}

	return val * multiplier, nil
}
