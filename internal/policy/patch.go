package policy

import "strings"

const truncationMarker = "\n... [diff truncated for review: change exceeds the configured size limit]"

// TruncatePatch caps a unified diff at maxLines lines. Oversized files still
// get a partial review rather than none. The returned bool reports whether
// truncation happened; the marker line tells the model the diff is partial.
func TruncatePatch(patch string, maxLines int) (string, bool) {
	if maxLines <= 0 {
		return patch, false
	}

	lines := strings.Split(patch, "\n")
	if len(lines) <= maxLines {
		return patch, false
	}

	return strings.Join(lines[:maxLines], "\n") + truncationMarker, true
}

// PatchLineCount returns the number of lines in a patch, the unit the
// max_changes_per_file limit is expressed in.
func PatchLineCount(patch string) int {
	if patch == "" {
		return 0
	}
	return strings.Count(patch, "\n") + 1
}
