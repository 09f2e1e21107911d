package importers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// IngredientRow is one ingredient of a fixture file.
type IngredientRow struct {
	Name            string `json:"name" yaml:"name"`
	MeasurementUnit string `json:"measurement_unit" yaml:"measurement_unit"`
}

// ParseIngredients reads ingredient rows in the given format. It returns
// the valid rows and a message for every skipped one.
func ParseIngredients(r io.Reader, format Format) ([]IngredientRow, []string, error) {
	var rows []IngredientRow
	switch format {
	case FormatCSV:
		return parseIngredientsCSV(r)
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&rows); err != nil {
			return nil, nil, fmt.Errorf("failed to decode ingredients: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&rows); err != nil && err != io.EOF {
			return nil, nil, fmt.Errorf("failed to decode ingredients: %w", err)
		}
	default:
		return nil, nil, fmt.Errorf("%w for ingredients: %s", ErrUnsupportedFormat, format)
	}

	valid := make([]IngredientRow, 0, len(rows))
	var problems []string
	for i, row := range rows {
		if strings.TrimSpace(row.Name) == "" || strings.TrimSpace(row.MeasurementUnit) == "" {
			problems = append(problems, fmt.Sprintf("Item %d: skipped - missing name or measurement unit", i+1))
			continue
		}
		valid = append(valid, row)
	}
	return valid, problems, nil
}

// parseIngredientsCSV accepts "name,measurement_unit" rows with or without
// a header line.
func parseIngredientsCSV(r io.Reader) ([]IngredientRow, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []IngredientRow
	var problems []string
	lineNum := 0

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			problems = append(problems, fmt.Sprintf("Line %d: %v", lineNum, err))
			continue
		}
		if lineNum == 1 && isIngredientHeader(record) {
			continue
		}
		if len(record) < 2 {
			problems = append(problems, fmt.Sprintf("Line %d: skipped - expected name and measurement unit", lineNum))
			continue
		}

		row := IngredientRow{Name: record[0], MeasurementUnit: record[1]}
		if strings.TrimSpace(row.Name) == "" || strings.TrimSpace(row.MeasurementUnit) == "" {
			problems = append(problems, fmt.Sprintf("Line %d: skipped - missing name or measurement unit", lineNum))
			continue
		}
		rows = append(rows, row)
	}

	return rows, problems, nil
}

func isIngredientHeader(record []string) bool {
	return len(record) >= 2 &&
		strings.EqualFold(strings.TrimSpace(record[0]), "name") &&
		strings.Contains(strings.ToLower(record[1]), "unit")
}
