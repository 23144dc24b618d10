// Package htmlsanitize strips dangerous markup from user-authored content
// before it is rendered. Listing descriptions are the main input; anything a
// user typed passes through Sanitize exactly once, at render time.
package htmlsanitize

import (
	"html/template"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	once   sync.Once
	policy *bluemonday.Policy
)

func ugcPolicy() *bluemonday.Policy {
	once.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
		policy = p
	})
	return policy
}

// Sanitize returns s with scripts, event handlers, and unsafe URLs removed.
// Formatting markup (paragraphs, emphasis, lists, tables, safe links)
// survives.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return ugcPolicy().Sanitize(s)
}

// SanitizeHTML sanitizes s and marks the result safe for direct template
// interpolation. Only use on content that must render as HTML; plain-text
// fields should go through normal template escaping instead.
func SanitizeHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}
