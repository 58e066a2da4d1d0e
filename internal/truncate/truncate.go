package truncate

// String truncates s to at most maxLength bytes. Truncated strings get an
// "...truncated" marker when there is room for it.
func String(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}

	const ellipsis = "...truncated"

	if maxLength <= len(ellipsis) {
		return s[:maxLength]
	}

	return s[:maxLength-len(ellipsis)] + ellipsis
}
