package metadata

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseType(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  Type
	}{
		{
			name:  "scalar",
			input: "DateTime",
			want:  Type{Name: "DateTime", Params: []Type{}},
		},
		{
			name:  "namespaced class",
			input: `Acme\Blog\Author`,
			want:  Type{Name: `Acme\Blog\Author`, Params: []Type{}},
		},
		{
			name:  "go import path",
			input: "github.com/acme/go-blog/model.Author",
			want:  Type{Name: "github.com/acme/go-blog/model.Author", Params: []Type{}},
		},
		{
			name:  "collection",
			input: "ArrayCollection<Comment>",
			want: Type{Name: "ArrayCollection", Params: []Type{
				{Name: "Comment", Params: []Type{}},
			}},
		},
		{
			name:  "map with spaces",
			input: " array < string , array<integer> > ",
			want: Type{Name: "array", Params: []Type{
				{Name: "string", Params: []Type{}},
				{Name: "array", Params: []Type{{Name: "integer", Params: []Type{}}}},
			}},
		},
		{
			name:  "quoted literal",
			input: `DateTime<'Y-m-d', "UTC">`,
			want: Type{Name: "DateTime", Params: []Type{
				{Name: "Y-m-d", Params: []Type{}},
				{Name: "UTC", Params: []Type{}},
			}},
		},
		{
			name:  "escaped quote",
			input: `enum<'it\'s'>`,
			want: Type{Name: "enum", Params: []Type{
				{Name: "it's", Params: []Type{}},
			}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseType(tc.input)
			if err != nil {
				t.Fatalf("ParseType(%q): %v", tc.input, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("type mismatch (-want +got):\n%s", diff)
			}
			if err := got.Validate(); err != nil {
				t.Fatalf("parsed type not well formed: %v", err)
			}
		})
	}
}

func TestParseTypeErrors(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"array<",
		"array<string",
		"array<string,>",
		"array<>",
		"array<string>>",
		"<string>",
		"DateTime<'Y-m-d>",
		"array<string;integer>",
	}
	for _, input := range inputs {
		if _, err := ParseType(input); !errors.Is(err, ErrInvalidType) {
			t.Fatalf("ParseType(%q): expected ErrInvalidType, got %v", input, err)
		}
	}
}

func TestTypeStringRoundTrip(t *testing.T) {
	inputs := []string{
		"integer",
		"ArrayCollection<Comment>",
		"array<string, array<integer>>",
		"DateTime<'Y-m-d H:i:s'>",
	}
	for _, input := range inputs {
		parsed := MustParseType(input)
		if got := parsed.String(); got != input {
			t.Fatalf("String() = %q, want %q", got, input)
		}
	}
}

func TestTypeValidateRejectsNilParams(t *testing.T) {
	if err := (Type{Name: "string"}).Validate(); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected nil params to be rejected, got %v", err)
	}
	nested := NewType("array", Type{Name: ""})
	if err := nested.Validate(); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected unnamed param to be rejected, got %v", err)
	}
}

func TestTypeCloneIsDeep(t *testing.T) {
	original := NewType("ArrayCollection", NewType("Comment"))
	clone := original.Clone()
	clone.Params[0].Name = "Changed"
	if original.Params[0].Name != "Comment" {
		t.Fatalf("clone shares params with original")
	}
}
