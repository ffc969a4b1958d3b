package httpclient

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/torosent/volley/internal/metrics"
)

const (
	HeaderResponseTime = "X-Response-Time"
	HeaderRuntime      = "X-Runtime"
)

// ServerTime extracts the server-reported compute time in milliseconds.
// X-Response-Time is read as milliseconds and may carry a unit suffix such as
// "42ms". X-Runtime is read as seconds. Values are floored. A missing or
// malformed header yields metrics.NotReported.
func ServerTime(h http.Header) int64 {
	if ms, ok := parseLeadingNumber(h.Get(HeaderResponseTime)); ok {
		return floorMillis(ms)
	}
	if secs, ok := parseLeadingNumber(h.Get(HeaderRuntime)); ok {
		return floorMillis(secs * 1000)
	}
	return metrics.NotReported
}

// parseLeadingNumber parses the numeric prefix of s, ignoring any unit.
func parseLeadingNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == '.' || (end == 0 && (c == '-' || c == '+')) {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

func floorMillis(v float64) int64 {
	return int64(math.Floor(v))
}
