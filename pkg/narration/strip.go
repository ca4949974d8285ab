package narration

import (
	"regexp"
	"strings"
)

var (
	linkRe       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	headingRe    = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	listMarkerRe = regexp.MustCompile(`(?m)^\s*(?:[-*+]|\d+\.)\s+`)
	quoteRe      = regexp.MustCompile(`(?m)^>\s*`)
	emphasisRe   = regexp.MustCompile(`(\*\*|__|\*|_|~~)`)
	codeFenceRe  = regexp.MustCompile("```[a-zA-Z]*")
	spaceRe      = regexp.MustCompile(`[ \t]{2,}`)
	blankRe      = regexp.MustCompile(`\n{3,}`)
)

// StripMarkup converts markdown-flavored response text into flowing speech
// text. The narration engine expects plain sentences, not structure.
func StripMarkup(text string) string {
	out := linkRe.ReplaceAllString(text, "$1")
	out = codeFenceRe.ReplaceAllString(out, "")
	out = strings.ReplaceAll(out, "`", "")
	out = headingRe.ReplaceAllString(out, "")
	out = listMarkerRe.ReplaceAllString(out, "")
	out = quoteRe.ReplaceAllString(out, "")
	out = emphasisRe.ReplaceAllString(out, "")
	out = spaceRe.ReplaceAllString(out, " ")
	out = blankRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
