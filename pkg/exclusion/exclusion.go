// Package exclusion decides which properties a serialization context sees.
package exclusion

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-serializer-metadata/pkg/metadata"
)

// DefaultGroup is the group of properties that declare none.
const DefaultGroup = "Default"

// Context carries the inputs strategies evaluate against.
type Context struct {
	Groups  []string
	Version string
}

// Strategy reports whether a property should be skipped.
type Strategy interface {
	ShouldSkipProperty(prop *metadata.PropertyMetadata, ctx Context) bool
}

// StrategyFunc adapts a function into a Strategy.
type StrategyFunc func(prop *metadata.PropertyMetadata, ctx Context) bool

// ShouldSkipProperty delegates to the underlying function.
func (fn StrategyFunc) ShouldSkipProperty(prop *metadata.PropertyMetadata, ctx Context) bool {
	return fn(prop, ctx)
}

// Groups skips properties outside the context groups. An empty context group
// list disables the check.
type Groups struct{}

// ShouldSkipProperty implements Strategy.
func (Groups) ShouldSkipProperty(prop *metadata.PropertyMetadata, ctx Context) bool {
	if len(ctx.Groups) == 0 {
		return false
	}
	groups := prop.Groups
	if len(groups) == 0 {
		groups = []string{DefaultGroup}
	}
	for _, want := range ctx.Groups {
		for _, have := range groups {
			if want == have {
				return false
			}
		}
	}
	return true
}

// Version skips properties whose since/until range excludes the context
// version. An empty context version disables the check.
type Version struct{}

// ShouldSkipProperty implements Strategy.
func (Version) ShouldSkipProperty(prop *metadata.PropertyMetadata, ctx Context) bool {
	if ctx.Version == "" {
		return false
	}
	if prop.SinceVersion != "" && CompareVersions(ctx.Version, prop.SinceVersion) < 0 {
		return true
	}
	if prop.UntilVersion != "" && CompareVersions(ctx.Version, prop.UntilVersion) > 0 {
		return true
	}
	return false
}

// Any skips a property when any strategy does.
type Any []Strategy

// ShouldSkipProperty implements Strategy.
func (a Any) ShouldSkipProperty(prop *metadata.PropertyMetadata, ctx Context) bool {
	for _, strategy := range a {
		if strategy != nil && strategy.ShouldSkipProperty(prop, ctx) {
			return true
		}
	}
	return false
}

// Default combines the group and version strategies.
func Default() Strategy {
	return Any{Groups{}, Version{}}
}

// Apply returns a copy of md without the skipped properties.
func Apply(md *metadata.ClassMetadata, strategy Strategy, ctx Context) *metadata.ClassMetadata {
	if md == nil {
		return nil
	}
	out := md.Clone()
	if strategy == nil {
		return out
	}
	kept := out.Properties[:0]
	for _, prop := range out.Properties {
		if prop != nil && !strategy.ShouldSkipProperty(prop, ctx) {
			kept = append(kept, prop)
		}
	}
	out.Properties = kept
	return out
}

// CompareVersions compares dotted versions segment by segment. Numeric
// segments compare as numbers, others lexically; missing segments count as 0.
func CompareVersions(a, b string) int {
	left := strings.Split(strings.TrimPrefix(strings.TrimSpace(a), "v"), ".")
	right := strings.Split(strings.TrimPrefix(strings.TrimSpace(b), "v"), ".")
	for i := 0; i < len(left) || i < len(right); i++ {
		if c := compareSegment(segment(left, i), segment(right, i)); c != 0 {
			return c
		}
	}
	return 0
}

func segment(parts []string, i int) string {
	if i < len(parts) && parts[i] != "" {
		return parts[i]
	}
	return "0"
}

func compareSegment(a, b string) int {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}
