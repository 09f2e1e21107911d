// Package importers loads reference data (ingredients and tags) from
// fixture files into the database.
//
// # Architecture
//
//	File → Parse* → rows → Pipeline → repository
//
// Parsing is format specific and tolerant: malformed rows are reported as
// line-numbered messages and skipped, while an unreadable file or a missing
// required column aborts the import. The Pipeline normalizes names,
// drops duplicates within the file and hands the rest to the repository,
// which skips rows that already exist.
//
// # Formats
//
//   - Ingredients: JSON, CSV and YAML
//   - Tags: JSON and YAML
//
// The format is chosen from the file extension (see FormatFromPath).
//
// # Example Usage
//
//	rows, problems, err := importers.ParseIngredients(f, importers.FormatCSV)
//	result, err := importers.NewPipeline(ingredientRepo, tagRepo).ImportIngredients(ctx, rows)
package importers
