// package atlas implements parsing of texture atlas descriptor text.
//
// An atlas descriptor is a line-oriented text format where each page section
// starts with the page's image name on its own line, followed by the page's
// attributes as "key: value" lines (the first of which is always "size:").
// Only the page names are extracted here; attribute content is intentionally
// ignored so that the viewer accepts any descriptor revision whose section
// structure matches.
package atlas

import (
	"errors"
	"strings"
)

// ErrNoPages is returned when a descriptor declares no pages at all, which
// means the text is not an atlas descriptor (or is truncated before the
// first "size:" line).
var ErrNoPages = errors.New("atlas: descriptor declares no pages")

// Pages extracts the declared page names from atlas descriptor text.
//
// A non-empty line containing no colon is a candidate page name; it is
// accepted when the next non-empty line begins with "size:". Names are
// returned in declaration order and duplicates are preserved.
//
// The function is pure: it performs no I/O and is fully deterministic.
//
// Parameters:
//   - text: the atlas descriptor text
//
// Returns:
//   - []string: the declared page names in order
//   - error: ErrNoPages if no page declaration is found
func Pages(text string) ([]string, error) {
	lines := strings.Split(text, "\n")

	var pages []string
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.Contains(line, ":") {
			continue
		}

		// Look ahead to the next non-empty line; a "size:" attribute
		// confirms this line opened a page section.
		for j := i + 1; j < len(lines); j++ {
			next := strings.TrimSpace(lines[j])
			if next == "" {
				continue
			}
			if strings.HasPrefix(next, "size:") {
				pages = append(pages, line)
			}
			break
		}
	}

	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	return pages, nil
}
