package match

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var foldCaser = cases.Fold()

// NormalizeFilename canonicalizes a filename for the fallback matching stage:
// NFC unicode normalization plus case folding. Servers on different
// filesystems can disagree on both composition form and case for the same
// file.
func NormalizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return foldCaser.String(norm.NFC.String(name))
}
