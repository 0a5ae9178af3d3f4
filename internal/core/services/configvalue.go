package services

import (
	"math"
	"time"
)

// Config values arrive as whatever the TOML decoder or a caller stored:
// int64 and float64 from files, int from code. These helpers accept the
// plausible encodings of each setting and reject everything else.

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok && s != ""
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// asDuration reads Go duration strings such as "30m" or "168h".
// Bare numbers are seconds.
func asDuration(v any) (time.Duration, bool) {
	if s, ok := v.(string); ok {
		d, err := time.ParseDuration(s)
		return d, err == nil
	}
	if secs, ok := asInt(v); ok {
		return time.Duration(secs) * time.Second, true
	}
	return 0, false
}
