package util

import (
	"regexp"
	"strings"
)

// Rich-text fields accept a fixed tag allowlist. Everything else is
// stripped, including event handlers and javascript: URLs.
var allowedTags = map[string]struct{}{
	"a": {}, "b": {}, "blockquote": {}, "br": {}, "code": {}, "em": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"hr": {}, "i": {}, "img": {}, "li": {}, "ol": {}, "p": {},
	"pre": {}, "strong": {}, "u": {}, "ul": {},
}

var allowedAttrs = map[string]struct{}{
	"href": {}, "src": {}, "alt": {}, "title": {},
}

var (
	scriptBlockRe  = regexp.MustCompile(`(?is)<(?:script|style|iframe|object|embed|form)\b.*?</\s*(?:script|style|iframe|object|embed|form)\s*>`)
	commentRe      = regexp.MustCompile(`(?s)<!--.*?-->`)
	tagRe          = regexp.MustCompile(`(?s)<[^>]*>`)
	tagNameRe      = regexp.MustCompile(`^</?\s*([a-zA-Z][a-zA-Z0-9]*)`)
	attrRe         = regexp.MustCompile(`([a-zA-Z-]+)\s*=\s*("([^"]*)"|'([^']*)'|([^\s>]+))`)
	whitespaceRe   = regexp.MustCompile(`[\s\x00-\x1f]+`)
)

// SanitizeHTML strips everything outside a fixed tag/attribute allowlist.
// It is applied to rich-text fields before persistence; storing sanitized
// markup means the public site can render it without a second pass.
func SanitizeHTML(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}

	out := scriptBlockRe.ReplaceAllString(input, "")
	out = commentRe.ReplaceAllString(out, "")

	return tagRe.ReplaceAllStringFunc(out, sanitizeTag)
}

func sanitizeTag(tag string) string {
	nameMatch := tagNameRe.FindStringSubmatch(tag)
	if nameMatch == nil {
		return ""
	}

	name := strings.ToLower(nameMatch[1])
	if _, ok := allowedTags[name]; !ok {
		return ""
	}

	if strings.HasPrefix(tag, "</") {
		return "</" + name + ">"
	}

	var builder strings.Builder
	builder.WriteString("<")
	builder.WriteString(name)

	for _, attr := range attrRe.FindAllStringSubmatch(tag, -1) {
		attrName := strings.ToLower(attr[1])
		if _, ok := allowedAttrs[attrName]; !ok {
			continue
		}

		value := attr[3]
		if value == "" {
			value = attr[4]
		}
		if value == "" {
			value = attr[5]
		}

		if (attrName == "href" || attrName == "src") && !safeURL(value) {
			continue
		}

		builder.WriteString(` ` + attrName + `="` + strings.ReplaceAll(value, `"`, "&quot;") + `"`)
	}

	if strings.HasSuffix(strings.TrimSuffix(tag, ">"), "/") || name == "br" || name == "hr" || name == "img" {
		builder.WriteString(" />")
	} else {
		builder.WriteString(">")
	}

	return builder.String()
}

// safeURL rejects scriptable URL schemes. Scheme-relative, absolute
// http(s), mailto, and site-relative URLs pass.
func safeURL(raw string) bool {
	cleaned := strings.ToLower(whitespaceRe.ReplaceAllString(raw, ""))

	for _, scheme := range []string{"javascript:", "data:", "vbscript:"} {
		if strings.HasPrefix(cleaned, scheme) {
			return false
		}
	}

	return true
}
