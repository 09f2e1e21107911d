package importers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// TagRow is one tag of a fixture file. Slug may be empty; it is then
// derived from the name.
type TagRow struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
	Slug  string `json:"slug" yaml:"slug"`
}

// ParseTags reads tag rows from JSON or YAML.
func ParseTags(r io.Reader, format Format) ([]TagRow, []string, error) {
	var rows []TagRow
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&rows); err != nil {
			return nil, nil, fmt.Errorf("failed to decode tags: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&rows); err != nil && err != io.EOF {
			return nil, nil, fmt.Errorf("failed to decode tags: %w", err)
		}
	default:
		return nil, nil, fmt.Errorf("%w for tags: %s", ErrUnsupportedFormat, format)
	}

	valid := make([]TagRow, 0, len(rows))
	var problems []string
	for i, row := range rows {
		if strings.TrimSpace(row.Name) == "" || strings.TrimSpace(row.Color) == "" {
			problems = append(problems, fmt.Sprintf("Item %d: skipped - missing name or color", i+1))
			continue
		}
		valid = append(valid, row)
	}
	return valid, problems, nil
}
