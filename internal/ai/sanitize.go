package ai

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	scriptTag = regexp.MustCompile(`(?i)</?script>`)
	jsScheme  = regexp.MustCompile(`(?i)javascript:`)

	openScript  = regexp.MustCompile(`(?i)<script\b[^>]*>`)
	closeScript = regexp.MustCompile(`(?i)</script\s*>`)

	policy = newPolicy()
)

// newPolicy allows the formatting subset the assistant is told to answer in.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"strong", "b", "em", "i",
		"code", "pre", "blockquote",
		"h1", "h2", "h3", "h4",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	return p
}

// Sanitize makes generated text safe to render as markup. Script tags that
// are never closed are stripped first so they cannot swallow the text after
// them; a closed script element is dropped with its body.
// The allow-list policy then drops every element and attribute outside the
// formatting subset, and the script and javascript: denylist runs over what
// is left until nothing more matches.
func Sanitize(s string) string {
	s = policy.Sanitize(dropUnclosedScripts(s))
	for {
		next := jsScheme.ReplaceAllString(scriptTag.ReplaceAllString(s, ""), "")
		if next == s {
			break
		}
		s = next
	}
	return strings.TrimSpace(s)
}

// dropUnclosedScripts removes opening script tags with no closing tag after
// them. Only the last one needs checking: a closing tag after it also
// closes every earlier one.
func dropUnclosedScripts(s string) string {
	for {
		locs := openScript.FindAllStringIndex(s, -1)
		if len(locs) == 0 {
			return s
		}
		last := locs[len(locs)-1]
		if closeScript.MatchString(s[last[1]:]) {
			return s
		}
		s = s[:last[0]] + s[last[1]:]
	}
}
