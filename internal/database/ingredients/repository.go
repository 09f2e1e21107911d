// Package ingredients provides database operations for ingredient
// reference data.
package ingredients

import (
	"context"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/foodgram/internal/entities"
)

var (
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrIngredientExists   = errors.New("ingredient with this name and unit already exists")
)

// Repository handles all ingredient database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new ingredients repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateIngredient creates a new ingredient.
func (r *Repository) CreateIngredient(ctx context.Context, name, unit string) (*entities.Ingredient, error) {
	ingredient := &entities.Ingredient{Name: name, MeasurementUnit: unit}
	if err := r.db.WithContext(ctx).Create(ingredient).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrIngredientExists
		}
		return nil, err
	}
	return ingredient, nil
}

// ImportIngredients inserts ingredients in batches, skipping (name, unit)
// pairs that already exist. Returns the number of rows inserted.
func (r *Repository) ImportIngredients(ctx context.Context, items []entities.Ingredient) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(items, 500)
	return result.RowsAffected, result.Error
}

// SearchIngredients returns ingredients whose name starts with prefix,
// ordered by name. An empty prefix returns everything.
//
// sqlite only folds ASCII case in LIKE, so the prefix is also tried
// lowercased and with an upper-case first letter to cover other scripts.
func (r *Repository) SearchIngredients(ctx context.Context, prefix string) ([]entities.Ingredient, error) {
	var ingredients []entities.Ingredient
	query := r.db.WithContext(ctx).Order("name ASC, id ASC")

	if prefix != "" {
		escaped := escapeLike(prefix)
		variants := []string{escaped, strings.ToLower(escaped), capitalize(strings.ToLower(escaped))}
		cond := r.db.Where("name LIKE ? ESCAPE '\\'", variants[0]+"%")
		for _, v := range variants[1:] {
			cond = cond.Or("name LIKE ? ESCAPE '\\'", v+"%")
		}
		query = query.Where(cond)
	}

	err := query.Find(&ingredients).Error
	return ingredients, err
}

// GetIngredientByID retrieves an ingredient by ID.
func (r *Repository) GetIngredientByID(ctx context.Context, id uint) (*entities.Ingredient, error) {
	var ingredient entities.Ingredient
	err := r.db.WithContext(ctx).First(&ingredient, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, err
	}
	return &ingredient, nil
}

// IngredientsByID loads the ingredients with the given IDs. Unknown IDs are
// simply absent from the returned map.
func (r *Repository) IngredientsByID(ctx context.Context, ids []uint) (map[uint]entities.Ingredient, error) {
	result := make(map[uint]entities.Ingredient, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var ingredients []entities.Ingredient
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, err
	}
	for _, ing := range ingredients {
		result[ing.ID] = ing
	}
	return result, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(first)) + s[size:]
}
