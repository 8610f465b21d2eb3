package executor

import "strings"

// TruncationMarker is appended to any stream cut at the length ceiling,
// so callers can detect truncation without comparing lengths.
const TruncationMarker = "\n... (output truncated)"

// Truncate bounds a single stream at maxLen bytes. The returned flag
// reports whether truncation happened. Truncate is idempotent: a string
// already carrying the marker is returned unchanged.
func Truncate(s string, maxLen int) (string, bool) {
	if maxLen <= 0 || len(s) <= maxLen {
		return s, false
	}
	if strings.HasSuffix(s, TruncationMarker) {
		return s, true
	}
	return s[:maxLen] + TruncationMarker, true
}

// NormalizeOutput bounds stdout and stderr independently at maxLen.
func NormalizeOutput(stdout, stderr string, maxLen int) (outNorm, errNorm string, outTruncated, errTruncated bool) {
	outNorm, outTruncated = Truncate(stdout, maxLen)
	errNorm, errTruncated = Truncate(stderr, maxLen)
	return outNorm, errNorm, outTruncated, errTruncated
}
