package pointio

import (
	"strings"
)

// maxNameLen caps the length of generated output file names.
const maxNameLen = 128

// OutputName joins parts with underscores into a file name safe for any
// filesystem. Runs of characters other than ASCII letters, digits, dot and
// dash collapse to a single underscore. Empty results become "unnamed".
func OutputName(parts ...string) string {
	var b strings.Builder
	pendingSep := false
	for _, part := range parts {
		for _, r := range part {
			if b.Len() >= maxNameLen {
				break
			}
			switch {
			case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
				r == '.', r == '-':
				if pendingSep && b.Len() > 0 {
					b.WriteByte('_')
				}
				pendingSep = false
				b.WriteRune(r)
			default:
				pendingSep = true
			}
		}
		pendingSep = true
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unnamed"
	}
	return out
}
