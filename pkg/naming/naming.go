// Package naming translates property names into serialized names.
package naming

import (
	"strings"
	"unicode"

	"github.com/goliatone/go-serializer-metadata/pkg/metadata"
)

// Strategy computes the serialized name for a property.
type Strategy interface {
	TranslateName(prop *metadata.PropertyMetadata) string
}

// StrategyFunc adapts a function into a Strategy.
type StrategyFunc func(prop *metadata.PropertyMetadata) string

// TranslateName calls the underlying function.
func (fn StrategyFunc) TranslateName(prop *metadata.PropertyMetadata) string {
	return fn(prop)
}

// Identical keeps the property name as is.
type Identical struct{}

// TranslateName implements Strategy.
func (Identical) TranslateName(prop *metadata.PropertyMetadata) string {
	return prop.Name
}

// CamelCaseToSnake converts "createdAt" into "created_at" (or whatever
// Separator is configured).
type CamelCaseToSnake struct {
	Separator string
	Lowercase bool
}

// NewCamelCaseToSnake returns the conventional underscore, lowercase variant.
func NewCamelCaseToSnake() CamelCaseToSnake {
	return CamelCaseToSnake{Separator: "_", Lowercase: true}
}

// TranslateName implements Strategy.
func (s CamelCaseToSnake) TranslateName(prop *metadata.PropertyMetadata) string {
	sep := s.Separator
	runes := []rune(prop.Name)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteString(sep)
			}
		}
		b.WriteRune(r)
	}
	out := b.String()
	if s.Lowercase {
		out = strings.ToLower(out)
	}
	return out
}

// SerializedNameAware honours explicitly configured serialized names and falls
// back to Delegate otherwise. A name counts as explicit when it differs from
// the property name.
type SerializedNameAware struct {
	Delegate Strategy
}

// TranslateName implements Strategy.
func (s SerializedNameAware) TranslateName(prop *metadata.PropertyMetadata) string {
	if prop.SerializedName != "" && prop.SerializedName != prop.Name {
		return prop.SerializedName
	}
	if s.Delegate == nil {
		return prop.Name
	}
	return s.Delegate.TranslateName(prop)
}

// ByName resolves a strategy from its configuration name ("identical",
// "snake_case"). Unknown names return false.
func ByName(name string) (Strategy, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "identical":
		return Identical{}, true
	case "snake", "snake_case", "camel_case_to_snake":
		return NewCamelCaseToSnake(), true
	}
	return nil, false
}
