package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-serializer-metadata/pkg/metadata"
	"github.com/goliatone/go-serializer-metadata/pkg/openapi"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatOpenAPI = "openapi"
)

func render(w io.Writer, format, version string, mds []*metadata.ClassMetadata) error {
	var value any = mds
	if len(mds) == 1 {
		value = mds[0]
	}

	switch format {
	case FormatJSON:
		return writeJSON(w, value)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return fmt.Errorf("cli: encode yaml: %w", err)
		}
		return enc.Close()
	case FormatOpenAPI:
		return writeJSON(w, openapi.New().Document("serializer-metadata", version, mds...))
	}
	return fmt.Errorf("cli: unsupported format %q", format)
}

func writeJSON(w io.Writer, value any) error {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("cli: encode json: %w", err)
	}
	payload = append(payload, '\n')
	_, err = w.Write(payload)
	return err
}
