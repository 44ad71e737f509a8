package policy

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// contentPolicy accepts rich-text editor output and strips scripts, event
// handlers and other active content.
var contentPolicy = newContentPolicy()

func newContentPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	p.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("style").OnElements("p", "span", "div", "h1", "h2", "h3", "h4", "h5", "h6", "table", "tr", "td", "th")
	p.AllowAttrs("class").OnElements("p", "span", "div", "h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li", "table", "tr", "td", "th")

	p.AllowElements("table", "thead", "tbody", "tr", "th", "td")
	p.AllowAttrs("border", "cellpadding", "cellspacing").OnElements("table")
	p.AllowElements("ul", "ol", "li")
	p.AllowElements("strong", "em", "u", "s", "sub", "sup", "blockquote", "pre", "code")

	p.AllowAttrs("href", "target", "rel").OnElements("a")
	p.AllowRelativeURLs(true)
	p.AllowAttrs("src", "alt", "title", "width", "height").OnElements("img")

	return p
}

// SanitizeContent returns content unchanged unless it carries markup the
// policy removes. Entity escaping of text alone does not count as a change,
// so plain text such as "Terms & Conditions" is stored as written.
func SanitizeContent(content string) string {
	clean := contentPolicy.Sanitize(content)
	if clean == content || html.UnescapeString(clean) == html.UnescapeString(content) {
		return content
	}
	return clean
}
