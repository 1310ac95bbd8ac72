package ingest

import (
	"strings"
	"time"
)

// dateTokens maps the pattern tokens accepted in fixed titles and
// content prefixes/suffixes onto reference-layout fragments. Longer
// tokens are listed first so yyyy is not consumed as two mm.
var dateTokens = []struct {
	token  string
	layout string
}{
	{"yyyy", "2006"},
	{"mm", "01"},
	{"dd", "02"},
	{"hh", "15"},
	{"ii", "04"},
	{"ss", "05"},
}

// FormatDateTokens substitutes every date token embedded in s with
// the corresponding field of t. Text outside the tokens is preserved
// verbatim.
func FormatDateTokens(s string, t time.Time) string {
	if s == "" {
		return s
	}
	for _, dt := range dateTokens {
		if strings.Contains(s, dt.token) {
			s = strings.ReplaceAll(s, dt.token, t.Format(dt.layout))
		}
	}
	return s
}
