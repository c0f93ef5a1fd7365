// Package tagutil splits the comma separated option lists used by the
// serializer and odm struct tags.
package tagutil

import (
	"strings"
	"unicode"
)

// Option is one entry of a tag: a bare flag ("readonly") or a key/value pair
// ("type=array<string, integer>").
type Option struct {
	Key   string
	Value string
	Flag  bool
}

// Parse splits tag on top-level commas. Commas nested inside <...> or quotes
// belong to the value, so type strings survive intact.
func Parse(tag string) []Option {
	var (
		opts  []Option
		depth int
		quote rune
		start int
	)
	flush := func(end int) {
		part := strings.TrimSpace(tag[start:end])
		if part != "" {
			opts = append(opts, parseOption(part))
		}
	}
	for i, r := range tag {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '<':
			depth++
		case r == '>':
			if depth > 0 {
				depth--
			}
		case r == ',' && depth == 0:
			flush(i)
			start = i + 1
		}
	}
	flush(len(tag))
	return opts
}

func parseOption(part string) Option {
	key, value, found := strings.Cut(part, "=")
	if !found {
		return Option{Key: normalizeKey(part), Flag: true}
	}
	return Option{Key: normalizeKey(key), Value: strings.TrimSpace(value)}
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// SplitList splits "a|b|c" style values.
func SplitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, "|") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// PropertyName derives the property name for a Go struct field: the leading
// upper-case run is lowered so "CreatedAt" becomes "createdAt" and "ID"
// becomes "id" while "URLPath" becomes "urlPath".
func PropertyName(field string) string {
	runes := []rune(field)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	switch {
	case n == 0:
		return field
	case n == 1 || n == len(runes):
		for i := 0; i < n; i++ {
			runes[i] = unicode.ToLower(runes[i])
		}
	default:
		for i := 0; i < n-1; i++ {
			runes[i] = unicode.ToLower(runes[i])
		}
	}
	return string(runes)
}
