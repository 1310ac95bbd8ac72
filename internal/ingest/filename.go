package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hyan/noteflow/internal/model"
	"github.com/hyan/noteflow/internal/vault"
)

// maxCollisionProbes bounds the numbered-variant search under the
// "new file" conflict policy.
const maxCollisionProbes = 1000

// titleRuneLimit caps content-derived titles.
const titleRuneLimit = 20

var (
	// allowedTitleChars keeps ASCII letters and digits, CJK
	// ideographs, and + - _ . @ | (plus the fullwidth bar).
	allowedTitleChars = regexp.MustCompile(`[a-zA-Z0-9\x{4e00}-\x{9fa5}+\-_.@|｜]+`)

	// strippedTitleChars are removed after the allow-list pass.
	strippedTitleChars = regexp.MustCompile(`[/\\^:]`)
)

// Resolver derives a document title for a message and guarantees the
// name does not collide with an existing document under the "new
// file" policy.
type Resolver struct {
	store vault.DocumentStore

	// now supplies the filing time for date-based rules; stubbed in
	// tests.
	now func() time.Time
}

// NewResolver creates a filename resolver probing existence against
// the given document store.
func NewResolver(store vault.DocumentStore) *Resolver {
	return &Resolver{store: store, now: time.Now}
}

// Resolve returns the filename (always ending in .md) for a message.
// An explicit non-empty title takes precedence over the naming rule.
// Under ConflictNew the name is collision-probed; exhausting the probe
// bound returns a NameExhaustedError and the caller should fall back
// to a randomized name rather than lose the content.
func (r *Resolver) Resolve(cfg model.NamingConfig, content string, createdAt time.Time, explicitTitle string) (string, error) {
	var title string
	if strings.TrimSpace(explicitTitle) != "" {
		title = SanitizeTitle(explicitTitle)
	} else {
		title = SanitizeTitle(r.derive(cfg, content, createdAt))
	}

	// Append mode reuses the same name so repeated filings
	// accumulate into one document.
	if cfg.ConflictPolicy != model.ConflictNew {
		return title + ".md", nil
	}

	folder := cfg.SaveFolder
	candidate := title + ".md"
	if !r.exists(folder, candidate) {
		return candidate, nil
	}
	for i := 0; i <= maxCollisionProbes; i++ {
		candidate = title + "(" + strconv.Itoa(i) + ").md"
		if !r.exists(folder, candidate) {
			return candidate, nil
		}
	}

	return "", &NameExhaustedError{Title: title}
}

// derive applies the configured naming rule.
func (r *Resolver) derive(cfg model.NamingConfig, content string, createdAt time.Time) string {
	var title string
	switch cfg.Rule {
	case model.RuleDateYMD:
		title = r.now().Format("2006-01-02")
	case model.RuleDateMD:
		title = r.now().Format("01-02")
	case model.RuleContent:
		title = contentTitle(content)
	case model.RuleFixed:
		if cfg.FixedPattern != "" {
			title = FormatDateTokens(cfg.FixedPattern, createdAt)
		}
	}

	// Whatever the rule produced, an empty title falls back to the
	// current date.
	if title == "" {
		title = r.now().Format("2006-01-02")
	}
	return title
}

// contentTitle takes the first line of content, or the start of the
// whole content when the first line is empty, capped at 20 runes.
func contentTitle(content string) string {
	line, _, _ := strings.Cut(content, "\n")
	if line == "" {
		line = content
	}
	runes := []rune(line)
	if len(runes) > titleRuneLimit {
		runes = runes[:titleRuneLimit]
	}
	return string(runes)
}

// SanitizeTitle strips every character outside the allowed set,
// substituting the literal "undefined" when nothing survives, then
// removes path and caret characters.
func SanitizeTitle(title string) string {
	if title == "" {
		return ""
	}
	parts := allowedTitleChars.FindAllString(title, -1)
	if parts == nil {
		return "undefined"
	}
	return strippedTitleChars.ReplaceAllString(strings.Join(parts, ""), "")
}

func (r *Resolver) exists(folder, name string) bool {
	return r.store.Exists(model.StorageTarget{Folder: folder, Title: name}.Path())
}
