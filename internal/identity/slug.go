package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonicalizer folds raw vendor codes into the canonical slug form:
// uppercase ASCII letters and digits separated by single hyphens.
type Canonicalizer struct {
	maxSlugLength int
}

// NewCanonicalizer returns a canonicalizer that truncates slugs to the
// given maximum length.
func NewCanonicalizer(maxSlugLength int) *Canonicalizer {
	return &Canonicalizer{maxSlugLength: maxSlugLength}
}

var decomposer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Canonicalize normalizes a raw code deterministically. Accented characters
// decompose to their base letters, the separator set `- _ . space /` maps to
// a hyphen, everything else outside [A-Z0-9] is dropped, and repeated
// hyphens collapse. Input with nothing representable yields ErrInvalidCode.
func (c *Canonicalizer) Canonicalize(raw string) (string, error) {
	decomposed, _, err := transform.String(decomposer, raw)
	if err != nil {
		decomposed = raw
	}
	upper := strings.ToUpper(decomposed)

	var b strings.Builder
	b.Grow(len(upper))
	pendingHyphen := false
	for _, r := range upper {
		switch {
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.' || r == ' ' || r == '/':
			pendingHyphen = true
		}
	}

	slug := b.String()
	if slug == "" {
		return "", ErrInvalidCode
	}
	return c.truncate(slug), nil
}

func (c *Canonicalizer) truncate(slug string) string {
	if c.maxSlugLength <= 0 || len(slug) <= c.maxSlugLength {
		return slug
	}
	return strings.TrimRight(slug[:c.maxSlugLength], "-")
}
