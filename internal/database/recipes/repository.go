// Package recipes provides database operations for recipes, their tags and
// their ingredient quantity lines.
//
// Writes replace the complete set of tags and lines inside one transaction;
// nothing is ever partially updated.
//
// # Usage
//
//	repo := recipes.NewRepository(db)
//	recipe, err := repo.CreateRecipe(ctx, authorID, recipes.Input{...})
//	page, total, err := repo.ListRecipes(ctx, recipes.Filter{TagSlugs: []string{"lunch"}}, 6, 0)
package recipes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/foodgram/internal/entities"
)

var (
	ErrRecipeNotFound    = errors.New("recipe not found")
	ErrUnknownTag        = errors.New("unknown tag")
	ErrUnknownIngredient = errors.New("unknown ingredient")
)

// Line is one ingredient quantity of a recipe write.
type Line struct {
	IngredientID uint
	Amount       int
}

// Input holds the writable fields of a recipe. Validation of shape
// (non-empty, unique, positive) is the caller's job; the repository checks
// that referenced tags and ingredients exist.
type Input struct {
	Name        string
	Text        string
	Image       string // Empty on update keeps the current image
	CookingTime int
	TagIDs      []uint
	Lines       []Line
}

// Filter narrows ListRecipes. Zero values mean "no filter".
// IsFavorited and IsInCart are evaluated against UserID and ignored when
// UserID is zero.
type Filter struct {
	AuthorID    uint
	TagSlugs    []string
	UserID      uint
	IsFavorited *bool
	IsInCart    *bool
}

// Repository handles all recipe database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new recipes repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func preloadRecipe(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id ASC") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id ASC") }).
		Preload("Ingredients.Ingredient")
}

// GetRecipeByID retrieves a recipe with author, tags and ingredient lines.
func (r *Repository) GetRecipeByID(ctx context.Context, id uint) (*entities.Recipe, error) {
	var recipe entities.Recipe
	err := preloadRecipe(r.db.WithContext(ctx)).First(&recipe, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// RecipeExists reports whether a recipe with the ID exists.
func (r *Repository) RecipeExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Recipe{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// ListRecipes returns a page of recipes, newest first, and the total count.
func (r *Repository) ListRecipes(ctx context.Context, filter Filter, limit, offset int) ([]entities.Recipe, int64, error) {
	var recipes []entities.Recipe
	var total int64

	db := r.db.WithContext(ctx)
	if err := applyFilter(db.Model(&entities.Recipe{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := applyFilter(preloadRecipe(db), filter).Order("recipes.pub_date DESC, recipes.id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	err := query.Find(&recipes).Error
	return recipes, total, err
}

func applyFilter(query *gorm.DB, f Filter) *gorm.DB {
	if f.AuthorID != 0 {
		query = query.Where("recipes.author_id = ?", f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		query = query.Where(`recipes.id IN (
			SELECT recipe_tags.recipe_id FROM recipe_tags
			JOIN tags ON tags.id = recipe_tags.tag_id
			WHERE tags.slug IN ?)`, f.TagSlugs)
	}
	if f.UserID != 0 && f.IsFavorited != nil {
		sub := "recipes.id IN (SELECT recipe_id FROM favorites WHERE user_id = ?)"
		if !*f.IsFavorited {
			sub = "recipes.id NOT IN (SELECT recipe_id FROM favorites WHERE user_id = ?)"
		}
		query = query.Where(sub, f.UserID)
	}
	if f.UserID != 0 && f.IsInCart != nil {
		sub := "recipes.id IN (SELECT recipe_id FROM cart_entries WHERE user_id = ?)"
		if !*f.IsInCart {
			sub = "recipes.id NOT IN (SELECT recipe_id FROM cart_entries WHERE user_id = ?)"
		}
		query = query.Where(sub, f.UserID)
	}
	return query
}

// RecipesByAuthor returns up to limit of an author's recipes, newest first.
// A non-positive limit returns all of them.
func (r *Repository) RecipesByAuthor(ctx context.Context, authorID uint, limit int) ([]entities.Recipe, error) {
	var recipes []entities.Recipe
	query := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("pub_date DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&recipes).Error
	return recipes, err
}

// CountByAuthors returns the number of recipes for each of authorIDs.
func (r *Repository) CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		AuthorID uint
		Count    int64
	}
	err := r.db.WithContext(ctx).Model(&entities.Recipe{}).
		Select("author_id, COUNT(*) AS count").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.AuthorID] = row.Count
	}
	return counts, nil
}

// RecipeLines returns the ingredient lines of a recipe in insertion order.
// Ingredients are not preloaded.
func (r *Repository) RecipeLines(ctx context.Context, recipeID uint) ([]entities.RecipeIngredient, error) {
	var lines []entities.RecipeIngredient
	err := r.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Order("id ASC").
		Find(&lines).Error
	return lines, err
}

// CreateRecipe stores a new recipe with its tags and lines.
func (r *Repository) CreateRecipe(ctx context.Context, authorID uint, in Input) (*entities.Recipe, error) {
	var id uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := loadTags(tx, in.TagIDs)
		if err != nil {
			return err
		}
		if err := checkIngredients(tx, in.Lines); err != nil {
			return err
		}

		recipe := &entities.Recipe{
			AuthorID:    authorID,
			Name:        in.Name,
			Text:        in.Text,
			Image:       in.Image,
			CookingTime: in.CookingTime,
			PubDate:     time.Now().UTC(),
		}
		if err := tx.Omit("Author", "Tags", "Ingredients").Create(recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		id = recipe.ID

		return replaceRelations(tx, recipe, tags, in.Lines)
	})
	if err != nil {
		return nil, err
	}
	return r.GetRecipeByID(ctx, id)
}

// UpdateRecipe overwrites a recipe's fields, tags and lines. It returns the
// updated recipe and the previous image path when the image changed.
func (r *Repository) UpdateRecipe(ctx context.Context, id uint, in Input) (*entities.Recipe, string, error) {
	var replacedImage string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe entities.Recipe
		if err := tx.First(&recipe, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return err
		}

		tags, err := loadTags(tx, in.TagIDs)
		if err != nil {
			return err
		}
		if err := checkIngredients(tx, in.Lines); err != nil {
			return err
		}

		fields := map[string]any{
			"name":         in.Name,
			"text":         in.Text,
			"cooking_time": in.CookingTime,
		}
		if in.Image != "" && in.Image != recipe.Image {
			fields["image"] = in.Image
			replacedImage = recipe.Image
		}
		if err := tx.Model(&recipe).Updates(fields).Error; err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&entities.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("failed to clear ingredient lines: %w", err)
		}
		return replaceRelations(tx, &recipe, tags, in.Lines)
	})
	if err != nil {
		return nil, "", err
	}

	recipe, err := r.GetRecipeByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return recipe, replacedImage, nil
}

// DeleteRecipe removes a recipe together with its lines, tag links,
// favorites and cart entries. It returns the image path of the deleted recipe.
func (r *Repository) DeleteRecipe(ctx context.Context, id uint) (string, error) {
	var image string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe entities.Recipe
		if err := tx.First(&recipe, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return err
		}
		image = recipe.Image

		for _, model := range []any{&entities.RecipeIngredient{}, &entities.Favorite{}, &entities.CartEntry{}} {
			if err := tx.Where("recipe_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
	return image, err
}

// ImagePaths returns every image path currently referenced by a recipe.
func (r *Repository) ImagePaths(ctx context.Context) (map[string]bool, error) {
	var paths []string
	err := r.db.WithContext(ctx).Model(&entities.Recipe{}).
		Where("image <> ''").
		Pluck("image", &paths).Error
	if err != nil {
		return nil, err
	}
	inUse := make(map[string]bool, len(paths))
	for _, p := range paths {
		inUse[p] = true
	}
	return inUse, nil
}

func loadTags(tx *gorm.DB, ids []uint) ([]entities.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []entities.Tag
	if err := tx.Where("id IN ?", ids).Order("id ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(uniqueIDs(ids)) {
		found := make(map[uint]bool, len(tags))
		for _, t := range tags {
			found[t.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return nil, fmt.Errorf("%w: %d", ErrUnknownTag, id)
			}
		}
	}
	return tags, nil
}

func checkIngredients(tx *gorm.DB, lines []Line) error {
	if len(lines) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.IngredientID)
	}

	var found []uint
	if err := tx.Model(&entities.Ingredient{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return err
	}
	if len(found) == len(uniqueIDs(ids)) {
		return nil
	}

	known := make(map[uint]bool, len(found))
	for _, id := range found {
		known[id] = true
	}
	for _, id := range ids {
		if !known[id] {
			return fmt.Errorf("%w: %d", ErrUnknownIngredient, id)
		}
	}
	return nil
}

func replaceRelations(tx *gorm.DB, recipe *entities.Recipe, tags []entities.Tag, lines []Line) error {
	if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
		return fmt.Errorf("failed to set tags: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}
	rows := make([]entities.RecipeIngredient, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, entities.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: l.IngredientID,
			Amount:       l.Amount,
		})
	}
	if err := tx.Omit("Ingredient").Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to create ingredient lines: %w", err)
	}
	return nil
}

func uniqueIDs(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
