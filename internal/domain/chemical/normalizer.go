package chemical

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeOptions selects how a raw term is canonicalized.
type NormalizeOptions struct {
	// ExpandGreek renders *alpha* as α; otherwise as "alpha".
	ExpandGreek bool
	// PreserveSpace keeps interior spaces; otherwise they are removed.
	PreserveSpace bool
	// URLEncodeSpace turns kept spaces into the literal "%20".
	// Ignored when PreserveSpace is false.
	URLEncodeSpace bool
}

// Presets used by the resolver.
var (
	// RemoteTerm is the first remote attempt: ASCII Greek names, %20 spaces.
	RemoteTerm = NormalizeOptions{ExpandGreek: false, PreserveSpace: true, URLEncodeSpace: true}
	// RemoteTermStripped is the fallback remote attempt with spaces removed.
	RemoteTermStripped = NormalizeOptions{ExpandGreek: false, PreserveSpace: false}
)

// greekMarkup is the fixed set of supported *name* tokens. Order matters only
// for readability; the tokens never overlap.
var greekMarkup = []struct {
	token, glyph, ascii string
}{
	{"*alpha*", "α", "alpha"},
	{"*beta*", "β", "beta"},
	{"*gamma*", "γ", "gamma"},
	{"*rho*", "ρ", "rho"},
	{"*delta*", "δ", "delta"},
}

var (
	greekGlyphs = newGreekReplacer(true)
	greekASCII  = newGreekReplacer(false)
)

func newGreekReplacer(glyph bool) *strings.Replacer {
	pairs := make([]string, 0, len(greekMarkup)*2)
	for _, g := range greekMarkup {
		if glyph {
			pairs = append(pairs, g.token, g.glyph)
		} else {
			pairs = append(pairs, g.token, g.ascii)
		}
	}
	return strings.NewReplacer(pairs...)
}

// Normalize canonicalizes a free-text chemical name. It always lowercases and
// trims, then rewrites Greek markup and applies the space policy. Unknown
// *markup* tokens are left as-is. Pure and deterministic.
func Normalize(raw string, opts NormalizeOptions) string {
	term := LookupKey(raw)

	if opts.ExpandGreek {
		term = greekGlyphs.Replace(term)
	} else {
		term = greekASCII.Replace(term)
	}

	switch {
	case !opts.PreserveSpace:
		term = strings.ReplaceAll(term, " ", "")
	case opts.URLEncodeSpace:
		term = strings.ReplaceAll(term, " ", "%20")
	}
	return term
}

// LookupKey is the exact-match key used by the synonym index: NFC, lowercase,
// surrounding whitespace trimmed. Interior spacing and markup are untouched.
func LookupKey(raw string) string {
	return strings.TrimSpace(strings.ToLower(norm.NFC.String(raw)))
}

// Variants returns the ordered remote attempts for raw, dropping the second
// when it is identical to the first (single-word names).
func Variants(raw string) []string {
	first := Normalize(raw, RemoteTerm)
	second := Normalize(raw, RemoteTermStripped)
	if first == second {
		return []string{first}
	}
	return []string{first, second}
}

//Personal.AI order the ending
