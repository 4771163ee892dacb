package util

import (
	"regexp"
	"strings"
	"unicode"

	"go-portfolio-cms/pkg/apierror"
)

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeFilename normalizes an uploaded filename: control and invisible
// characters dropped, reserved punctuation replaced, length capped by
// runes. Hidden names are rejected; uploads never start with a dot.
func SanitizeFilename(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", apierror.BadRequest("filename cannot be empty")
	}

	if strings.Contains(trimmed, "\x00") {
		return "", apierror.BadRequest("filename contains null bytes")
	}

	builder := strings.Builder{}
	builder.Grow(len(trimmed))
	for _, char := range trimmed {
		if unicode.IsControl(char) {
			continue
		}
		builder.WriteRune(char)
	}

	cleaned := strings.TrimSpace(invalidFilenameChars.ReplaceAllString(builder.String(), "_"))
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "", apierror.BadRequest("filename is invalid after sanitization")
	}

	if strings.HasPrefix(cleaned, ".") {
		return "", apierror.BadRequest("hidden filenames are not allowed")
	}

	runes := []rune(cleaned)
	if len(runes) > 200 {
		runes = runes[:200]
	}

	return string(runes), nil
}
