package migrate

import (
	"github.com/pmezard/go-difflib/difflib"
)

// UnifiedDiff renders a unified diff between the original and rewritten
// text of one file. fromFile and toFile label the two sides with the
// absolute source and destination paths. Identical content renders as the
// empty string.
func UnifiedDiff(result Result, fromFile, toFile string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(result.Original),
		B:        difflib.SplitLines(result.Rewritten),
		FromFile: fromFile,
		ToFile:   toFile,
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(diff)
}
