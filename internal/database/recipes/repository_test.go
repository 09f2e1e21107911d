package recipes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/foodgram/internal/database/dbtest"
	"github.com/mrlokans/foodgram/internal/entities"
)

type fixture struct {
	db     *gorm.DB
	repo   *Repository
	author *entities.User
	flour  *entities.Ingredient
	sugar  *entities.Ingredient
	tags   []entities.Tag
}

func setupTestDB(t *testing.T) *fixture {
	db := dbtest.NewDB(t)
	f := &fixture{
		db:     db,
		repo:   NewRepository(db),
		author: dbtest.CreateUser(t, db, "chef"),
		flour:  dbtest.CreateIngredient(t, db, "flour", "g"),
		sugar:  dbtest.CreateIngredient(t, db, "sugar", "g"),
	}
	require.NoError(t, db.Order("id").Find(&f.tags).Error)
	return f
}

func (f *fixture) input(name string) Input {
	return Input{
		Name:        name,
		Text:        "Mix and bake",
		Image:       "recipes/" + name + ".png",
		CookingTime: 30,
		TagIDs:      []uint{f.tags[0].ID},
		Lines: []Line{
			{IngredientID: f.flour.ID, Amount: 200},
			{IngredientID: f.sugar.ID, Amount: 100},
		},
	}
}

func boolPtr(b bool) *bool { return &b }

func TestRepository_CreateRecipe(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()

	recipe, err := f.repo.CreateRecipe(ctx, f.author.ID, f.input("cake"))

	require.NoError(t, err)
	assert.Equal(t, "cake", recipe.Name)
	assert.Equal(t, "chef", recipe.Author.Username)
	require.Len(t, recipe.Tags, 1)
	assert.Equal(t, f.tags[0].Slug, recipe.Tags[0].Slug)
	require.Len(t, recipe.Ingredients, 2)
	assert.Equal(t, "flour", recipe.Ingredients[0].Ingredient.Name)
	assert.Equal(t, 200, recipe.Ingredients[0].Amount)
	assert.Equal(t, "sugar", recipe.Ingredients[1].Ingredient.Name)
	assert.False(t, recipe.PubDate.IsZero())
}

func TestRepository_CreateRecipe_UnknownReferences(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()

	t.Run("unknown tag", func(t *testing.T) {
		in := f.input("cake")
		in.TagIDs = []uint{f.tags[0].ID, 9999}
		_, err := f.repo.CreateRecipe(ctx, f.author.ID, in)
		assert.ErrorIs(t, err, ErrUnknownTag)
	})

	t.Run("unknown ingredient", func(t *testing.T) {
		in := f.input("cake")
		in.Lines = append(in.Lines, Line{IngredientID: 9999, Amount: 1})
		_, err := f.repo.CreateRecipe(ctx, f.author.ID, in)
		assert.ErrorIs(t, err, ErrUnknownIngredient)
	})

	var count int64
	require.NoError(t, f.db.Model(&entities.Recipe{}).Count(&count).Error)
	assert.Zero(t, count, "failed writes must not leave rows behind")
}

func TestRepository_UpdateRecipe(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	created, err := f.repo.CreateRecipe(ctx, f.author.ID, f.input("cake"))
	require.NoError(t, err)

	t.Run("replaces tags and lines", func(t *testing.T) {
		in := f.input("better cake")
		in.Image = ""
		in.TagIDs = []uint{f.tags[1].ID, f.tags[2].ID}
		in.Lines = []Line{{IngredientID: f.sugar.ID, Amount: 50}}

		updated, oldImage, err := f.repo.UpdateRecipe(ctx, created.ID, in)

		require.NoError(t, err)
		assert.Empty(t, oldImage, "image kept when none supplied")
		assert.Equal(t, "better cake", updated.Name)
		assert.Equal(t, created.Image, updated.Image)
		assert.Len(t, updated.Tags, 2)
		require.Len(t, updated.Ingredients, 1)
		assert.Equal(t, 50, updated.Ingredients[0].Amount)

		var lines int64
		require.NoError(t, f.db.Model(&entities.RecipeIngredient{}).Count(&lines).Error)
		assert.Equal(t, int64(1), lines)
	})

	t.Run("reports replaced image", func(t *testing.T) {
		in := f.input("cake")
		in.Image = "recipes/new.png"

		updated, oldImage, err := f.repo.UpdateRecipe(ctx, created.ID, in)

		require.NoError(t, err)
		assert.Equal(t, "recipes/cake.png", oldImage)
		assert.Equal(t, "recipes/new.png", updated.Image)
	})

	t.Run("unknown ingredient leaves recipe untouched", func(t *testing.T) {
		in := f.input("broken")
		in.Lines = []Line{{IngredientID: 9999, Amount: 1}}

		_, _, err := f.repo.UpdateRecipe(ctx, created.ID, in)
		require.ErrorIs(t, err, ErrUnknownIngredient)

		current, err := f.repo.GetRecipeByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "cake", current.Name)
		assert.Len(t, current.Ingredients, 2)
	})

	t.Run("missing recipe", func(t *testing.T) {
		_, _, err := f.repo.UpdateRecipe(ctx, 9999, f.input("x"))
		assert.ErrorIs(t, err, ErrRecipeNotFound)
	})
}

func TestRepository_DeleteRecipe(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	recipe, err := f.repo.CreateRecipe(ctx, f.author.ID, f.input("cake"))
	require.NoError(t, err)
	dbtest.AddToCart(t, f.db, f.author, recipe)
	require.NoError(t, f.db.Omit("User", "Recipe").Create(&entities.Favorite{UserID: f.author.ID, RecipeID: recipe.ID}).Error)

	image, err := f.repo.DeleteRecipe(ctx, recipe.ID)

	require.NoError(t, err)
	assert.Equal(t, "recipes/cake.png", image)
	for _, model := range []any{&entities.Recipe{}, &entities.RecipeIngredient{}, &entities.CartEntry{}, &entities.Favorite{}} {
		var count int64
		require.NoError(t, f.db.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}
	var links int64
	require.NoError(t, f.db.Table("recipe_tags").Count(&links).Error)
	assert.Zero(t, links)

	_, err = f.repo.DeleteRecipe(ctx, recipe.ID)
	assert.ErrorIs(t, err, ErrRecipeNotFound)
}

func TestRepository_ListRecipes(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	other := dbtest.CreateUser(t, f.db, "other")

	first, err := f.repo.CreateRecipe(ctx, f.author.ID, f.input("first"))
	require.NoError(t, err)
	secondIn := f.input("second")
	secondIn.TagIDs = []uint{f.tags[1].ID}
	second, err := f.repo.CreateRecipe(ctx, other.ID, secondIn)
	require.NoError(t, err)
	third, err := f.repo.CreateRecipe(ctx, f.author.ID, f.input("third"))
	require.NoError(t, err)

	require.NoError(t, f.db.Omit("User", "Recipe").Create(&entities.Favorite{UserID: other.ID, RecipeID: first.ID}).Error)
	dbtest.AddToCart(t, f.db, other, third)

	ids := func(recipes []entities.Recipe) []uint {
		out := make([]uint, 0, len(recipes))
		for _, r := range recipes {
			out = append(out, r.ID)
		}
		return out
	}

	tests := []struct {
		name     string
		filter   Filter
		expected []uint
	}{
		{name: "all newest first", filter: Filter{}, expected: []uint{third.ID, second.ID, first.ID}},
		{name: "by author", filter: Filter{AuthorID: other.ID}, expected: []uint{second.ID}},
		{name: "by tag slug", filter: Filter{TagSlugs: []string{f.tags[1].Slug}}, expected: []uint{second.ID}},
		{name: "any of tags", filter: Filter{TagSlugs: []string{f.tags[0].Slug, f.tags[1].Slug}}, expected: []uint{third.ID, second.ID, first.ID}},
		{name: "favorited", filter: Filter{UserID: other.ID, IsFavorited: boolPtr(true)}, expected: []uint{first.ID}},
		{name: "not favorited", filter: Filter{UserID: other.ID, IsFavorited: boolPtr(false)}, expected: []uint{third.ID, second.ID}},
		{name: "in cart", filter: Filter{UserID: other.ID, IsInCart: boolPtr(true)}, expected: []uint{third.ID}},
		{name: "anonymous ignores flags", filter: Filter{IsInCart: boolPtr(true)}, expected: []uint{third.ID, second.ID, first.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipes, total, err := f.repo.ListRecipes(ctx, tt.filter, 10, 0)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.expected)), total)
			assert.Equal(t, tt.expected, ids(recipes))
		})
	}

	t.Run("pagination", func(t *testing.T) {
		recipes, total, err := f.repo.ListRecipes(ctx, Filter{}, 2, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Equal(t, []uint{first.ID}, ids(recipes))
	})
}

func TestRepository_AuthorHelpers(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	other := dbtest.CreateUser(t, f.db, "other")
	for _, name := range []string{"a", "b", "c"} {
		_, err := f.repo.CreateRecipe(ctx, f.author.ID, f.input(name))
		require.NoError(t, err)
	}

	limited, err := f.repo.RecipesByAuthor(ctx, f.author.ID, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	all, err := f.repo.RecipesByAuthor(ctx, f.author.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	counts, err := f.repo.CountByAuthors(ctx, []uint{f.author.ID, other.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[f.author.ID])
	assert.Zero(t, counts[other.ID])
}

func TestRepository_RecipeLinesAndImages(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	recipe, err := f.repo.CreateRecipe(ctx, f.author.ID, f.input("cake"))
	require.NoError(t, err)

	lines, err := f.repo.RecipeLines(ctx, recipe.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, f.flour.ID, lines[0].IngredientID)
	assert.Equal(t, f.sugar.ID, lines[1].IngredientID)

	images, err := f.repo.ImagePaths(ctx)
	require.NoError(t, err)
	assert.True(t, images["recipes/cake.png"])

	exists, err := f.repo.RecipeExists(ctx, recipe.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}
