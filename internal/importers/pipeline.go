package importers

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/mrlokans/foodgram/internal/entities"
	"github.com/mrlokans/foodgram/internal/logging"
)

// IngredientWriter persists ingredients, skipping existing (name, unit) pairs.
type IngredientWriter interface {
	ImportIngredients(ctx context.Context, items []entities.Ingredient) (int64, error)
}

// TagWriter looks a tag up by name and creates it when missing.
type TagWriter interface {
	GetOrCreateTag(ctx context.Context, name, color, slug string) (*entities.Tag, bool, error)
}

// Result summarizes an import run.
type Result struct {
	Read     int      // Rows handed to the pipeline
	Imported int      // Rows actually created
	Skipped  int      // Duplicates and rows that already existed
	Errors   []string // Rows rejected by the store
}

// Pipeline handles the common import workflow:
// normalize → deduplicate → save.
type Pipeline struct {
	ingredients IngredientWriter
	tags        TagWriter
}

func NewPipeline(ingredients IngredientWriter, tags TagWriter) *Pipeline {
	return &Pipeline{ingredients: ingredients, tags: tags}
}

// ImportIngredients stores the rows in one batch.
func (p *Pipeline) ImportIngredients(ctx context.Context, rows []IngredientRow) (Result, error) {
	result := Result{Read: len(rows)}
	if len(rows) == 0 {
		return result, nil
	}

	seen := make(map[string]bool, len(rows))
	items := make([]entities.Ingredient, 0, len(rows))
	for _, row := range rows {
		item := entities.Ingredient{
			Name:            cleanName(row.Name),
			MeasurementUnit: cleanName(row.MeasurementUnit),
		}
		key := strings.ToLower(item.Name) + "|" + strings.ToLower(item.MeasurementUnit)
		if seen[key] {
			continue
		}
		seen[key] = true
		items = append(items, item)
	}

	inserted, err := p.ingredients.ImportIngredients(ctx, items)
	if err != nil {
		return result, fmt.Errorf("failed to import ingredients: %w", err)
	}
	result.Imported = int(inserted)
	result.Skipped = result.Read - result.Imported

	logging.Ctx(ctx).Info().
		Int("read", result.Read).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Msg("ingredients imported")
	return result, nil
}

// ImportTags creates the tags one by one; a tag the store rejects is
// reported in Result.Errors and does not stop the run.
func (p *Pipeline) ImportTags(ctx context.Context, rows []TagRow) (Result, error) {
	result := Result{Read: len(rows)}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		name := cleanName(row.Name)
		_, created, err := p.tags.GetOrCreateTag(ctx, name, strings.TrimSpace(row.Color), strings.TrimSpace(row.Slug))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		if created {
			result.Imported++
		} else {
			result.Skipped++
		}
	}

	logging.Ctx(ctx).Info().
		Int("read", result.Read).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Msg("tags imported")
	return result, nil
}

// cleanName trims, collapses inner whitespace and NFC-normalizes a name so
// that visually identical names compare equal.
func cleanName(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}
