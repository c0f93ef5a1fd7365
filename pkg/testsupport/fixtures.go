package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-serializer-metadata/pkg/metadata"
)

// CreatedAtSkew is the tolerance used when comparing metadata built at
// different moments.
const CreatedAtSkew = 2 * time.Second

// MustLoadClassMetadata loads a JSON golden file into ClassMetadata.
func MustLoadClassMetadata(t *testing.T, path string) *metadata.ClassMetadata {
	t.Helper()

	md, err := LoadClassMetadata(path)
	if err != nil {
		t.Fatalf("load class metadata: %v", err)
	}
	return md
}

// LoadClassMetadata reads a JSON fixture, returning an error for callers
// managing setup outside of *testing.T.
func LoadClassMetadata(path string) (*metadata.ClassMetadata, error) {
	if path == "" {
		return nil, errors.New("testsupport: class metadata path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read class metadata: %w", err)
	}
	var out metadata.ClassMetadata
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("testsupport: unmarshal class metadata: %w", err)
	}
	return &out, nil
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set and
// reports whether it did.
func WriteGolden(t *testing.T, path string, value any) bool {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// DiffMetadata compares two metadata records, tolerating CreatedAt skew only.
// A nil slice and an empty one differ, so Type.Params stays checked. Extra
// options are appended, e.g. IgnoreFileResources or EquateEmpty.
func DiffMetadata(want, got *metadata.ClassMetadata, opts ...cmp.Option) string {
	options := append([]cmp.Option{cmpopts.EquateApproxTime(CreatedAtSkew)}, opts...)
	return cmp.Diff(want, got, options...)
}

// EquateEmpty treats nil and empty slices alike. Use it for records decoded
// from JSON, where omitted lists come back nil.
func EquateEmpty() cmp.Option {
	return cmpopts.EquateEmpty()
}

// IgnoreCreatedAt drops the timestamp from comparisons entirely; goldens are
// recorded at a fixed time.
func IgnoreCreatedAt() cmp.Option {
	return cmpopts.IgnoreFields(metadata.ClassMetadata{}, "CreatedAt")
}

// IgnoreFileResources drops resource paths, which are machine specific.
func IgnoreFileResources() cmp.Option {
	return cmpopts.IgnoreFields(metadata.ClassMetadata{}, "FileResources")
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
